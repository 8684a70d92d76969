package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/weaver/pkg/plan"
)

// Builder accumulates targets in declaration order.
type Builder struct {
	targets []*TargetBuilder
	index   map[string]*TargetBuilder
}

// New creates an empty plan builder.
func New() *Builder {
	return &Builder{index: make(map[string]*TargetBuilder)}
}

// Target starts (or resumes) the advice list of owner.name.
func (b *Builder) Target(owner, name string) *TargetBuilder {
	key := owner + "\x00" + name
	if tb, ok := b.index[key]; ok {
		return tb
	}
	tb := &TargetBuilder{
		target:  plan.Target{Owner: owner, Name: name},
		builder: b,
	}
	b.index[key] = tb
	b.targets = append(b.targets, tb)
	return tb
}

// Build returns the plan. Targets without owner or name are rejected;
// advice kinds are checked later, against a catalog.
func (b *Builder) Build() (*plan.Plan, error) {
	p := &plan.Plan{Targets: make([]plan.Target, 0, len(b.targets))}
	var errs []error
	for i, tb := range b.targets {
		if tb.target.Owner == "" || tb.target.Name == "" {
			errs = append(errs, fmt.Errorf("target %d: owner and name are required", i))
			continue
		}
		p.Targets = append(p.Targets, tb.target)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return p, nil
}
