package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local cache backed by sync.Map. Expired entries are
// dropped lazily on read; the working set is one document per form and
// kind, so no background sweeper is needed.
type Memory struct {
	data   sync.Map
	config Config
}

type memoryItem struct {
	value      []byte
	expiration time.Time
}

// NewMemory creates an in-memory cache with the default configuration.
func NewMemory() *Memory {
	return NewMemoryWithConfig(DefaultConfig())
}

// NewMemoryWithConfig creates an in-memory cache with custom
// configuration.
func NewMemoryWithConfig(config Config) *Memory {
	return &Memory{config: config}
}

// Get retrieves a value, returning ErrCacheMiss when absent or expired.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullKey := m.config.Prefix + key

	value, ok := m.data.Load(fullKey)
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}

	item := value.(memoryItem)
	if !item.expiration.IsZero() && time.Now().After(item.expiration) {
		m.data.Delete(fullKey)
		return nil, ErrCacheMiss{Key: key}
	}

	return item.value, nil
}

// Set stores a value. A zero ttl falls back to the configured default; a
// negative ttl stores without expiration.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiration = time.Now().Add(ttl)
	}

	m.data.Store(m.config.Prefix+key, item)
	return nil
}

// Delete removes a value.
func (m *Memory) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.data.Delete(m.config.Prefix + key)
	return nil
}
