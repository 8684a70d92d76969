package advice

import (
	"context"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/avast/retry-go/v4"
)

// Retry re-runs the inner call until it succeeds or the retry policy gives up.
// The call's context bounds the retries and only the last error is returned.
// Wrap an error with retry.Unrecoverable to stop early.
func Retry(opts ...retry.Option) domain.Around {
	return func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
		args := inv.Args

		var result any
		err := retry.Do(func() error {
			var err error
			result, err = proceed(ctx, args...)
			return err
		}, append([]retry.Option{retry.Context(ctx), retry.LastErrorOnly(true)}, opts...)...)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}
