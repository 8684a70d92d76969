package advice

import (
	"context"
	"fmt"

	"github.com/aretw0/weaver/pkg/domain"
	lru "github.com/hashicorp/golang-lru"
)

// KeyFunc derives the cache key of a call.
type KeyFunc func(inv *domain.Invocation) string

// ArgsKey keys a call by its target and the Go-syntax form of its arguments.
func ArgsKey(inv *domain.Invocation) string {
	return fmt.Sprintf("%s%#v", inv.Target, inv.Args)
}

// Memo caches successful results of a target in a bounded LRU.
// Errors are never cached.
type Memo struct {
	cache *lru.Cache
	key   KeyFunc
}

// NewMemo creates a cache holding at most size results.
func NewMemo(size int, key KeyFunc) (*Memo, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("memo: %w", err)
	}
	if key == nil {
		key = ArgsKey
	}
	return &Memo{cache: cache, key: key}, nil
}

// Around is the hook to register on the target.
func (m *Memo) Around(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
	k := m.key(inv)
	if v, ok := m.cache.Get(k); ok {
		return v, nil
	}
	v, err := proceed(ctx, inv.Args...)
	if err != nil {
		return nil, err
	}
	m.cache.Add(k, v)
	return v, nil
}

// Len returns the number of cached results.
func (m *Memo) Len() int {
	return m.cache.Len()
}

// Purge drops every cached result.
func (m *Memo) Purge() {
	m.cache.Purge()
}
