package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/weaver/pkg/domain"
)

// ErrFunctionNotFound is returned when a name has no Function in the namespace.
var ErrFunctionNotFound = errors.New("function not found")

// Namespace is a named table of Functions. It implements domain.Augmentable,
// so every entry can be augmented and restored in place.
type Namespace struct {
	name  string
	mu    sync.RWMutex
	funcs map[string]domain.Function
}

var _ domain.Augmentable = (*Namespace)(nil)

// New creates an empty namespace.
func New(name string) *Namespace {
	return &Namespace{
		name:  name,
		funcs: make(map[string]domain.Function),
	}
}

// Owner returns the namespace name.
func (n *Namespace) Owner() string {
	return n.name
}

// Register adds a function to the namespace.
// If a function with the same name exists, it is overwritten.
func (n *Namespace) Register(name string, fn domain.Function) *Namespace {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.funcs[name] = fn
	return n
}

// Lookup returns the function currently bound to name.
func (n *Namespace) Lookup(name string) (domain.Function, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	fn, ok := n.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", n.name, name, ErrFunctionNotFound)
	}
	return fn, nil
}

// Rebind replaces an existing function. Unknown names are rejected so a typo
// cannot silently create a new entry.
func (n *Namespace) Rebind(name string, fn domain.Function) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.funcs[name]; !ok {
		return fmt.Errorf("%s.%s: %w", n.name, name, ErrFunctionNotFound)
	}
	n.funcs[name] = fn
	return nil
}

// Call looks up a function by name and executes it.
func (n *Namespace) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, err := n.Lookup(name)
	if err != nil {
		return nil, err
	}
	return fn(ctx, args...)
}

// Names returns the registered names in sorted order.
func (n *Namespace) Names() []string {
	n.mu.RLock()
	names := make([]string, 0, len(n.funcs))
	for name := range n.funcs {
		names = append(names, name)
	}
	n.mu.RUnlock()
	sort.Strings(names)
	return names
}
