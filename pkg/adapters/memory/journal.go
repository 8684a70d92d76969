package memory

import (
	"context"
	"sync"

	"github.com/aretw0/weaver/pkg/domain"
)

// DefaultJournalCapacity is the number of events kept when no capacity is given.
const DefaultJournalCapacity = 1024

// Journal implements ports.Journal in memory.
// Safe for concurrent use.
type Journal struct {
	mu       sync.RWMutex
	events   []domain.BindingEvent
	capacity int
}

// NewJournal creates a journal that keeps at most capacity events.
// A capacity <= 0 selects DefaultJournalCapacity.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	return &Journal{capacity: capacity}
}

// Append stores the event, evicting the oldest one when full.
func (j *Journal) Append(ctx context.Context, event domain.BindingEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.events) == j.capacity {
		copy(j.events, j.events[1:])
		j.events = j.events[:len(j.events)-1]
	}
	j.events = append(j.events, event)
	return nil
}

// List returns a copy of the most recent events, oldest first.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.BindingEvent, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(j.events) {
		start = len(j.events) - limit
	}
	out := make([]domain.BindingEvent, len(j.events)-start)
	copy(out, j.events[start:])
	return out, nil
}
