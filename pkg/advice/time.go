package advice

import (
	"context"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// TimeLabels are the label names Time expects on its observer.
var TimeLabels = []string{"owner", "name"}

// Time observes the wall-clock duration of every call, in seconds, labeled by
// target owner and name. Failed calls are observed too.
func Time(observer prometheus.ObserverVec) domain.Around {
	return func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
		start := time.Now()
		defer func() {
			observer.WithLabelValues(inv.Target.Owner, inv.Target.Name).
				Observe(time.Since(start).Seconds())
		}()
		return proceed(ctx, inv.Args...)
	}
}
