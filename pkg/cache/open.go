package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend names a cache implementation.
type Backend string

// Supported backends.
const (
	BackendNone  Backend = "none"
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendMongo Backend = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend Backend

	// Dir is the FileCache directory. Empty means DefaultDir().
	Dir string

	// RedisAddr and RedisPrefix configure RedisCache.
	RedisAddr   string
	RedisPrefix string

	// MongoURI, MongoDatabase and MongoCollection configure MongoCache.
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// ParseBackend parses a backend name. The empty string selects BackendFile.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendFile, nil
	case BackendNone, BackendFile, BackendRedis, BackendMongo:
		return b, nil
	}
	return "", fmt.Errorf("unknown cache backend %q", s)
}

// Open creates the configured backend. Remote backends are contacted
// before Open returns.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache: no address configured")
		}
		c, err := NewRedisCache(ctx, opts.RedisAddr, opts.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		if opts.MongoURI == "" || opts.MongoDatabase == "" {
			return nil, fmt.Errorf("mongo cache: uri and database are required")
		}
		c, err := NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}

// DefaultDir returns the cache directory following the XDG convention:
// $XDG_CACHE_HOME/flowtower, else ~/.cache/flowtower.
func DefaultDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "flowtower"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", "flowtower"), nil
}
