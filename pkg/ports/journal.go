package ports

import (
	"context"

	"github.com/aretw0/weaver/pkg/domain"
)

// Journal records binding changes so they can be audited after the fact.
type Journal interface {
	// Append stores an event. Implementations may drop the oldest entries
	// once a capacity is reached.
	Append(ctx context.Context, event domain.BindingEvent) error

	// List returns up to limit of the most recent events, oldest first.
	// A limit <= 0 returns everything retained.
	List(ctx context.Context, limit int) ([]domain.BindingEvent, error)
}
