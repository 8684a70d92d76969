package advice

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/weaver/pkg/domain"
)

// ErrPanic wraps a panic recovered by Recover.
var ErrPanic = errors.New("recovered panic")

// Suppress returns fallback instead of any error for which match reports true.
// A nil match suppresses every error.
func Suppress(match func(error) bool, fallback any) domain.Around {
	return func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
		result, err := proceed(ctx, inv.Args...)
		if err != nil && (match == nil || match(err)) {
			return fallback, nil
		}
		return result, err
	}
}

// SuppressIs is Suppress for errors matching any of targets with errors.Is.
func SuppressIs(fallback any, targets ...error) domain.Around {
	return Suppress(func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	}, fallback)
}

// Recover converts a panic in the inner call into an error wrapping ErrPanic.
func Recover() domain.Around {
	return func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (result any, err error) {
		defer func() {
			if p := recover(); p != nil {
				result, err = nil, fmt.Errorf("%s: %w: %v", inv.Target, ErrPanic, p)
			}
		}()
		return proceed(ctx, inv.Args...)
	}
}
