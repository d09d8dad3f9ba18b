package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the subset of the Redis API the snapshot store needs.
// *redis.Client satisfies it.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Snapshots stores the last successful collection of a screen in Redis as JSON,
// one key per screen name and loader key.
type Snapshots[T any] struct {
	kv     KV
	screen string
	ttl    time.Duration
}

// NewSnapshots creates a snapshot store for one screen
func NewSnapshots[T any](kv KV, screen string, ttl time.Duration) *Snapshots[T] {
	return &Snapshots[T]{kv: kv, screen: screen, ttl: ttl}
}

// Key returns the Redis key used for a loader key
func (s *Snapshots[T]) Key(key string) string {
	if key == "" {
		key = "_all"
	}
	return fmt.Sprintf("dashboard:snapshot:%s:%s", s.screen, key)
}

// Save overwrites the snapshot for key
func (s *Snapshots[T]) Save(ctx context.Context, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("snapshot %s: marshal: %w", s.Key(key), err)
	}
	if err := s.kv.Set(ctx, s.Key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("snapshot %s: store: %w", s.Key(key), err)
	}
	return nil
}

// Load returns the snapshot for key; ok is false when none exists
func (s *Snapshots[T]) Load(ctx context.Context, key string) ([]T, bool, error) {
	raw, err := s.kv.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("snapshot %s: read: %w", s.Key(key), err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("snapshot %s: decode: %w", s.Key(key), err)
	}
	return items, true, nil
}
