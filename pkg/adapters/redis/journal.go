package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/weaver/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Journal implements ports.Journal on top of a capped Redis list.
type Journal struct {
	client   *backend.Client
	key      string
	capacity int64
}

type Option func(*Journal)

// WithKey sets the list key.
func WithKey(key string) Option {
	return func(j *Journal) {
		j.key = key
	}
}

// WithCapacity caps the number of retained events (0 = unbounded).
func WithCapacity(n int64) Option {
	return func(j *Journal) {
		j.capacity = n
	}
}

// New creates a journal connected to the given address.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client:   client,
		key:      "weaver:journal",
		capacity: 10000,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Append pushes the event to the tail of the list and trims the head.
func (j *Journal) Append(ctx context.Context, event domain.BindingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := j.client.TxPipeline()
	pipe.RPush(ctx, j.key, data)
	if j.capacity > 0 {
		pipe.LTrim(ctx, j.key, -j.capacity, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// List returns the most recent events, oldest first.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.BindingEvent, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := j.client.LRange(ctx, j.key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	events := make([]domain.BindingEvent, 0, len(raw))
	for _, item := range raw {
		var e domain.BindingEvent
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
