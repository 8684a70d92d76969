package testutils

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/weaver/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// SetupRedis starts an in-memory Redis server and returns it with a client
// connected to it. Both are closed when the test ends.
func SetupRedis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

// Recorder collects labels from hooks in the order they fire. It is safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Before returns a hook that records label.
func (r *Recorder) Before(label string) domain.Before {
	return func(context.Context, *domain.Invocation) error {
		r.Add(label)
		return nil
	}
}

// After returns a hook that records label.
func (r *Recorder) After(label string) domain.After {
	return func(context.Context, *domain.Invocation, any, error) error {
		r.Add(label)
		return nil
	}
}

// Add records label.
func (r *Recorder) Add(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, label)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
