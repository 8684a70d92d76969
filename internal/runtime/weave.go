package runtime

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/weaver/pkg/domain"
)

// UndoFunc reverts a scoped augmentation.
type UndoFunc func(ctx context.Context) error

// Weave augments a target for the lifetime of a scope. The returned UndoFunc
// detaches the hooks it added and, when this weave created the binding and no
// other hooks remain, restores the original Function.
//
// Nested weaves must be undone in reverse order, typically with defer.
// Calling the UndoFunc more than once is safe.
func (r *Registry) Weave(ctx context.Context, owner domain.Augmentable, name string, hooks domain.HookSet) (UndoFunc, error) {
	handle, err := r.Augment(ctx, owner, name, hooks)
	if err != nil {
		return nil, err
	}

	var once sync.Once
	var undoErr error
	return func(ctx context.Context) error {
		once.Do(func() {
			undoErr = r.unweave(ctx, handle)
		})
		return undoErr
	}, nil
}

func (r *Registry) unweave(ctx context.Context, handle domain.Handle) error {
	removed, err := r.detach(ctx, handle)
	if err != nil {
		// Someone restored the target already; nothing left to undo.
		if errors.Is(err, domain.ErrNotAugmented) {
			return nil
		}
		return err
	}
	// A binding this weave no longer has hooks in belongs to someone else.
	if !removed || !handle.Created {
		return nil
	}

	if _, err := r.restore(ctx, handle.Target, true); err != nil && !errors.Is(err, domain.ErrNotAugmented) {
		return err
	}
	return nil
}
