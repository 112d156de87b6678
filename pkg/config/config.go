// Package config loads flowtower settings from a TOML file.
//
// The file is optional. Values it sets override the built-in defaults, and
// command-line flags override the file:
//
//	[layout]
//	horizontal_spacing = 60
//
//	[render]
//	mode = "vertical"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[tree.gateways]
//	ParallelGateway = "Fork"
package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/tree"
)

// Config is the full settings file.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Render Render        `toml:"render"`
	Cache  Cache         `toml:"cache"`
	Server Server        `toml:"server"`
	Tree   Tree          `toml:"tree"`
}

// Render holds serializer and preview defaults.
type Render struct {
	Mode   string  `toml:"mode"`
	Scale  float64 `toml:"scale"`
	Labels bool    `toml:"labels"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPrefix     string `toml:"redis_prefix"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Tree holds display labels. Gateway labels are keyed by payload type name.
type Tree struct {
	Start    string            `toml:"start"`
	End      string            `toml:"end"`
	Parallel string            `toml:"parallel"`
	Gateways map[string]string `toml:"gateways"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Render: Render{Mode: "horizontal", Scale: 2},
		Cache:  Cache{Backend: string(cache.BackendFile)},
		Server: Server{Addr: ":8080", AllowedOrigins: []string{"*"}},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/flowtower/config.toml, falling back
// to ~/.config/flowtower/config.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flowtower", "config.toml")
}

// Load reads the file at path over the defaults. A missing file is not an
// error when optional is set. Keys the file sets but Config does not know
// are returned sorted so callers can warn about them.
func Load(path string, optional bool) (Config, []string, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if optional {
				return cfg, nil, nil
			}
			return cfg, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Default(), nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	sort.Strings(unknown)

	if err := cfg.Validate(); err != nil {
		return Default(), unknown, err
	}
	return cfg, unknown, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if c.Render.Mode != "" && c.Render.Mode != "horizontal" && c.Render.Mode != "vertical" {
		return errors.New(errors.ErrCodeInvalidConfig, "render.mode must be horizontal or vertical, got %q", c.Render.Mode)
	}
	if _, err := cache.ParseBackend(c.Cache.Backend); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.backend")
	}
	if err := errors.ValidateCacheScope(c.Cache.RedisPrefix); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.redis_prefix")
	}
	if _, err := tree.GatewayLabels(c.Tree.Gateways); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "tree.gateways")
	}
	return nil
}

// CacheOptions converts the cache section for cache.Open.
func (c Config) CacheOptions() cache.Options {
	b, _ := cache.ParseBackend(c.Cache.Backend)
	return cache.Options{
		Backend:         b,
		Dir:             c.Cache.Dir,
		RedisAddr:       c.Cache.RedisAddr,
		RedisPrefix:     c.Cache.RedisPrefix,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
}

// Labels converts the tree section to builder labels. Unset labels stay
// empty so the builder keeps its defaults. A gateway section naming an
// unknown type yields no gateway labels; Validate reports it.
func (c Config) Labels() tree.Labels {
	gateways, _ := tree.GatewayLabels(c.Tree.Gateways)
	return tree.Labels{
		Start:    c.Tree.Start,
		End:      c.Tree.End,
		Parallel: c.Tree.Parallel,
		Gateways: gateways,
	}
}
