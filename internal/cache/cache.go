// Package cache stores rendered OData documents. Service and metadata
// documents are static per form definition, so re-rendering them on every
// request is pure waste; backends range from a process-local map to Redis.
package cache

import (
	"context"
	"time"
)

// Cache is the backend contract for document storage.
type Cache interface {
	// Get retrieves a value, returning ErrCacheMiss when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL; ttl 0 means the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error
}

// Config holds common configuration for cache backends.
type Config struct {
	// DefaultTTL applies when Set receives a zero TTL.
	DefaultTTL time.Duration
	// Prefix is prepended to every key.
	Prefix string
}

// DefaultConfig returns the configuration backends start from.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 10 * time.Minute,
		Prefix:     "central:",
	}
}

// ErrCacheMiss is returned when a key is not present.
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks whether an error is a cache miss.
func IsCacheMiss(err error) bool {
	_, ok := err.(ErrCacheMiss)
	return ok
}
