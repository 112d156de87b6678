// Package cache stores computed layouts, cells and trees by content hash.
//
// Backends implement [Cache]: [NullCache] disables caching, [FileCache]
// keeps entries on disk for the CLI, [RedisCache] and [MongoCache] share
// results between server instances. Keys come from a [Keyer], so every
// backend addresses the same entry for the same input.
//
//	c, err := cache.Open(ctx, cache.Options{Backend: cache.BackendFile, Dir: dir})
//	key := cache.NewDefaultKeyer().LayoutKey(cache.Hash(payload), cache.LayoutKeyOpts{})
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. A miss is reported by the
// boolean, not by an error. Callers decode entries themselves and Delete
// the ones that no longer decode.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default expiries per result kind.
const (
	TTLLayout = 7 * 24 * time.Hour
	TTLCells  = 7 * 24 * time.Hour
	TTLTree   = 24 * time.Hour
)
