package advice

import (
	"context"

	"github.com/aretw0/weaver/pkg/domain"
)

// Record passes every invocation to sink before the original runs.
func Record(sink func(inv *domain.Invocation)) domain.Before {
	return func(_ context.Context, inv *domain.Invocation) error {
		sink(inv)
		return nil
	}
}
