// Package cache stores finished growth trees and rendered artifacts so that
// repeated runs with the same options skip the simulation.
//
// Three backends implement [Cache]:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON envelope per key under a directory (CLI)
//   - [RedisCache]: shared cache for the HTTP server
//
// Keys are produced by a [Keyer]. Runs are deterministic for a given seed
// and option set, so the tree key is a hash of exactly those inputs, and
// artifact keys hash the tree key together with the drawing options.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Default entry lifetimes.
const (
	TTLTree     = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
//
// Get reports a miss with hit=false and a nil error. A zero ttl in Set means
// the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// GetJSON reads and decodes a JSON value. It returns ErrCacheMiss when the
// key is absent or expired.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !hit {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v as JSON and stores it.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
