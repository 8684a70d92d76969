package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/weaver"
	"github.com/aretw0/weaver/pkg/domain"
)

// ErrUnknownOwner is wrapped in the TargetResolutionError returned by Apply
// when a target names an owner that was not supplied.
var ErrUnknownOwner = errors.New("unknown owner")

// Validate checks a plan against a catalog without touching any target.
// Every problem found is reported, joined.
func Validate(p *Plan, c Catalog) error {
	if p == nil {
		return errors.New("nil plan")
	}
	var errs []error
	seen := make(map[domain.TargetID]int, len(p.Targets))
	for i, t := range p.Targets {
		where := fmt.Sprintf("targets[%d]", i)
		if t.Owner == "" {
			errs = append(errs, fmt.Errorf("%s: owner is required", where))
		}
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		}
		if t.Owner != "" && t.Name != "" {
			if prev, dup := seen[t.ID()]; dup {
				errs = append(errs, fmt.Errorf("%s: %s already listed at targets[%d]", where, t.ID(), prev))
			} else {
				seen[t.ID()] = i
			}
		}
		for j, a := range t.Advice {
			if _, err := c.Build(a); err != nil {
				errs = append(errs, fmt.Errorf("%s.advice[%d]: %w", where, j, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Applied tracks the weaves made by Apply.
type Applied struct {
	targets []domain.TargetID
	undo    []weaver.UndoFunc
}

// Targets returns the augmented targets in plan order.
func (a *Applied) Targets() []domain.TargetID {
	out := make([]domain.TargetID, len(a.targets))
	copy(out, a.targets)
	return out
}

// Undo reverts every weave, last applied first. It is safe to call more than once.
func (a *Applied) Undo(ctx context.Context) error {
	var errs []error
	for i := len(a.undo) - 1; i >= 0; i-- {
		if err := a.undo[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Apply validates the plan and weaves each target's advice onto the matching
// owner. If any target fails, everything applied so far is undone.
func Apply(ctx context.Context, w *weaver.Weaver, p *Plan, c Catalog, owners ...domain.Augmentable) (*Applied, error) {
	if err := Validate(p, c); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	byName := make(map[string]domain.Augmentable, len(owners))
	for _, o := range owners {
		if o == nil {
			continue
		}
		byName[o.Owner()] = o
	}

	applied := &Applied{}
	for _, t := range p.Targets {
		if err := applyTarget(ctx, w, t, c, byName, applied); err != nil {
			if uerr := applied.Undo(ctx); uerr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", uerr))
			}
			return nil, err
		}
	}
	return applied, nil
}

func applyTarget(ctx context.Context, w *weaver.Weaver, t Target, c Catalog, owners map[string]domain.Augmentable, applied *Applied) error {
	owner, ok := owners[t.Owner]
	if !ok {
		return domain.NewResolutionError(t.ID(), "lookup", ErrUnknownOwner)
	}

	var set domain.HookSet
	for _, a := range t.Advice {
		hooks, err := c.Build(a)
		if err != nil {
			return err
		}
		set = set.Merge(hooks)
	}

	undo, err := w.Weave(ctx, owner, t.Name, weaver.Hooks(set))
	if err != nil {
		return err
	}
	applied.targets = append(applied.targets, t.ID())
	applied.undo = append(applied.undo, undo)
	return nil
}
