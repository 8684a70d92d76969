package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
)

// dispatcher returns the Function installed in place of the original.
// Each call takes a snapshot of the hook set and runs without holding the lock,
// so hooks are free to augment or restore targets themselves.
func (r *Registry) dispatcher(b *binding) domain.Function {
	return func(ctx context.Context, args ...any) (any, error) {
		r.mu.RLock()
		set, original, restored := b.set, b.original, b.restored
		r.mu.RUnlock()

		// A caller may still hold the dispatcher after Restore.
		if restored {
			return original(ctx, args...)
		}
		return r.invoke(ctx, b, original, set, args)
	}
}

func (r *Registry) invoke(ctx context.Context, b *binding, original domain.Function, set domain.HookSet, args []any) (result any, err error) {
	b.calls.Add(1)
	inv := &domain.Invocation{
		ID:     r.newID(),
		Target: b.target,
		Args:   args,
	}
	start := r.now()

	defer func() {
		if p := recover(); p != nil {
			r.emitInvoke(ctx, inv, start, domain.OutcomePanic, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	result, err = chain(original, set, inv)(ctx, args...)

	outcome := domain.OutcomeOK
	if err != nil {
		outcome = domain.OutcomeError
	}
	r.emitInvoke(ctx, inv, start, outcome, err)
	return result, err
}

// chain composes the hook set around original.
//
// The first registered around hook is the outermost layer. The innermost
// layer runs the before hooks, the original and the after hooks; without
// around hooks that sequence is the whole call.
func chain(original domain.Function, set domain.HookSet, inv *domain.Invocation) domain.Proceed {
	inner := func(ctx context.Context, args ...any) (any, error) {
		inv.Args = args
		for _, before := range set.Before {
			if err := before(ctx, inv); err != nil {
				return nil, err
			}
		}

		result, err := original(ctx, inv.Args...)

		for _, after := range set.After {
			if herr := after(ctx, inv, result, err); herr != nil && err == nil {
				err = herr
			}
		}
		return result, err
	}

	next := domain.Proceed(inner)
	for i := len(set.Around) - 1; i >= 0; i-- {
		around, proceed := set.Around[i], next
		next = func(ctx context.Context, args ...any) (any, error) {
			inv.Args = args
			return around(ctx, inv, proceed)
		}
	}
	return next
}

func (r *Registry) emitInvoke(ctx context.Context, inv *domain.Invocation, start time.Time, outcome string, err error) {
	if r.hooks.OnInvoke == nil {
		return
	}
	event := &domain.InvokeEvent{
		EventBase: domain.EventBase{
			Timestamp: r.now(),
			Type:      domain.EventInvoke,
			Target:    inv.Target,
		},
		InvocationID: inv.ID,
		Duration:     r.now().Sub(start),
		Outcome:      outcome,
	}
	if err != nil {
		event.Error = err.Error()
	}
	r.hooks.OnInvoke(ctx, event)
}
