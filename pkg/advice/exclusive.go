package advice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
)

// Exclusive holds a lock for the duration of each call, so at most one
// caller (across every process sharing the locker) runs the target at a time.
// An empty key uses the target's "owner.name".
func Exclusive(locker ports.DistributedLocker, key string, ttl time.Duration) domain.Around {
	return func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (result any, err error) {
		k := key
		if k == "" {
			k = inv.Target.String()
		}

		unlock, err := locker.Lock(ctx, k, ttl)
		if err != nil {
			return nil, fmt.Errorf("exclusive %s: %w", k, err)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				err = errors.Join(err, fmt.Errorf("exclusive %s: release: %w", k, uerr))
			}
		}()

		return proceed(ctx, inv.Args...)
	}
}
