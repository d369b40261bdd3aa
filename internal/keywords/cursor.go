package keywords

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// CursorStore persists per-platform rotation cursors between cycles.
type CursorStore interface {
	Load(ctx context.Context, platform string) (int, error)
	Save(ctx context.Context, platform string, cursor int) error
}

// MemoryCursorStore keeps cursors for the life of the process.
type MemoryCursorStore struct {
	mu      sync.Mutex
	cursors map[string]int
}

// NewMemoryCursorStore creates an empty in-memory store.
func NewMemoryCursorStore() *MemoryCursorStore {
	return &MemoryCursorStore{cursors: make(map[string]int)}
}

// Load returns the cursor for platform, zero if unset.
func (m *MemoryCursorStore) Load(_ context.Context, platform string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursors[platform], nil
}

// Save stores the cursor for platform.
func (m *MemoryCursorStore) Save(_ context.Context, platform string, cursor int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[platform] = cursor
	return nil
}

// RedisCursorStore keeps cursors in Redis so restarts resume the rotation.
type RedisCursorStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCursorStore creates a store using keys "<prefix><platform>".
func NewRedisCursorStore(client *redis.Client, prefix string) *RedisCursorStore {
	if prefix == "" {
		prefix = "leadscan:rotation:"
	}
	return &RedisCursorStore{client: client, prefix: prefix}
}

// Load returns the stored cursor, zero if the key does not exist.
func (r *RedisCursorStore) Load(ctx context.Context, platform string) (int, error) {
	v, err := r.client.Get(ctx, r.prefix+platform).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get cursor: %w", err)
	}
	return v, nil
}

// Save writes the cursor without expiry.
func (r *RedisCursorStore) Save(ctx context.Context, platform string, cursor int) error {
	if err := r.client.Set(ctx, r.prefix+platform, cursor, 0).Err(); err != nil {
		return fmt.Errorf("redis set cursor: %w", err)
	}
	return nil
}
