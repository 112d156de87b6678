package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
horizontal_spacing = 60.5

[render]
mode = "vertical"

[cache]
backend = "redis"
redis_addr = "cache:6379"

[server]
addr = ":9000"
allowed_origins = ["https://example.com"]

[tree]
start = "Begin"

[tree.gateways]
ParallelGateway = "Fork"
`)
	cfg, unknown, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(unknown) != 0 {
		t.Errorf("unknown keys = %v", unknown)
	}

	if cfg.Layout.HorizontalSpacing != 60.5 {
		t.Errorf("HorizontalSpacing = %v", cfg.Layout.HorizontalSpacing)
	}
	if cfg.Layout.VerticalSpacing != layout.DefaultConfig().VerticalSpacing {
		t.Errorf("unset VerticalSpacing = %v, want default", cfg.Layout.VerticalSpacing)
	}
	if cfg.Render.Mode != "vertical" || cfg.Render.Scale != 2 {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Server.Addr != ":9000" || !slices.Equal(cfg.Server.AllowedOrigins, []string{"https://example.com"}) {
		t.Errorf("Server = %+v", cfg.Server)
	}

	opts := cfg.CacheOptions()
	if opts.Backend != cache.BackendRedis || opts.RedisAddr != "cache:6379" {
		t.Errorf("CacheOptions = %+v", opts)
	}

	labels := cfg.Labels()
	if labels.Start != "Begin" || labels.End != "" {
		t.Errorf("Labels = %+v", labels)
	}
	if labels.Gateways[flow.KindParallelGateway] != "Fork" {
		t.Errorf("gateway labels = %v", labels.Gateways)
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[render]
colour = "red"

[extra]
x = 1
`)
	_, unknown, err := Load(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"extra", "extra.x", "render.colour"}; !slices.Equal(unknown, want) {
		t.Errorf("unknown = %v, want %v", unknown, want)
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")

	cfg, _, err := Load(path, true)
	if err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if cfg.Render.Mode != Default().Render.Mode {
		t.Error("missing file should give defaults")
	}

	if _, _, err := Load(path, false); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("required missing file error = %v", err)
	}

	if _, _, err := Load("", false); err != nil {
		t.Errorf("empty path should give defaults, got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[layout`},
		{"mode", "[render]\nmode = \"diagonal\""},
		{"backend", "[cache]\nbackend = \"memcached\""},
		{"gateway", "[tree.gateways]\nMagicGateway = \"x\""},
		{"redis prefix", "[cache]\nredis_prefix = \"flow tower\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.body), false)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != "/tmp/xdg/flowtower/config.toml" {
		t.Errorf("DefaultPath = %q", got)
	}
}
