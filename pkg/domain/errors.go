package domain

import (
	"errors"
	"fmt"
)

// ErrNotAugmented is returned when restoring or detaching a target that has no active binding.
var ErrNotAugmented = errors.New("target not augmented")

// ErrNilHook is returned when an augmentation carries a nil hook.
var ErrNilHook = errors.New("nil hook")

// ErrTargetResolution is matched (errors.Is) by every TargetResolutionError.
var ErrTargetResolution = errors.New("target resolution failed")

// TargetResolutionError reports that a target could not be located, or that
// its Function could not be safely read or replaced.
type TargetResolutionError struct {
	Target TargetID
	Op     string // "lookup" or "rebind"
	Err    error
}

func (e *TargetResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s %s: unresolvable target", e.Op, e.Target)
}

func (e *TargetResolutionError) Unwrap() error {
	return e.Err
}

// Is makes every TargetResolutionError match ErrTargetResolution.
func (e *TargetResolutionError) Is(target error) bool {
	return target == ErrTargetResolution
}

// NewResolutionError builds a TargetResolutionError.
func NewResolutionError(target TargetID, op string, err error) *TargetResolutionError {
	return &TargetResolutionError{Target: target, Op: op, Err: err}
}
