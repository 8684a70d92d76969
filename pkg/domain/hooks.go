package domain

import (
	"context"
	"fmt"
)

// Invocation describes a single call flowing through a target's hooks.
// Before hooks may rewrite Args; the original Function receives the final value.
type Invocation struct {
	ID     string
	Target TargetID
	Args   []any
}

// Before runs ahead of the original Function. A non-nil error aborts the call.
type Before func(ctx context.Context, inv *Invocation) error

// After runs once the original Function has returned. It observes the result
// and error; returning a non-nil error replaces a successful outcome.
type After func(ctx context.Context, inv *Invocation, result any, err error) error

// Proceed continues to the next around layer or, from the innermost one, to
// the before/original/after chain. It may be called any number of times.
type Proceed func(ctx context.Context, args ...any) (any, error)

// Around wraps the inner call and decides whether and when to Proceed.
// Whatever it returns is what the caller of the target receives.
type Around func(ctx context.Context, inv *Invocation, proceed Proceed) (any, error)

// HookSet holds the ordered hooks of a target. Order within a slot is
// registration order.
type HookSet struct {
	Before []Before
	After  []After
	Around []Around
}

// Empty reports whether the set carries no hooks at all.
func (h HookSet) Empty() bool {
	return len(h.Before) == 0 && len(h.After) == 0 && len(h.Around) == 0
}

// Merge returns a new HookSet with other's hooks appended after h's.
// Neither input is modified.
func (h HookSet) Merge(other HookSet) HookSet {
	return HookSet{
		Before: append(append([]Before(nil), h.Before...), other.Before...),
		After:  append(append([]After(nil), h.After...), other.After...),
		Around: append(append([]Around(nil), h.Around...), other.Around...),
	}
}

// Validate rejects nil hooks. The error names the slot and position and
// matches ErrNilHook.
func (h HookSet) Validate() error {
	for i, fn := range h.Before {
		if fn == nil {
			return fmt.Errorf("before[%d]: %w", i, ErrNilHook)
		}
	}
	for i, fn := range h.After {
		if fn == nil {
			return fmt.Errorf("after[%d]: %w", i, ErrNilHook)
		}
	}
	for i, fn := range h.Around {
		if fn == nil {
			return fmt.Errorf("around[%d]: %w", i, ErrNilHook)
		}
	}
	return nil
}

// Counts summarizes the set by slot.
func (h HookSet) Counts() HookCounts {
	return HookCounts{Before: len(h.Before), After: len(h.After), Around: len(h.Around)}
}

// HookCounts is the number of hooks per slot.
type HookCounts struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Around int `json:"around"`
}
