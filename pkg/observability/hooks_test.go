package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// recorder counts the events it receives.
type recorder struct {
	Noop
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) OnLayoutStart(context.Context, int) { r.add("layout start") }
func (r *recorder) OnCacheMiss(_ context.Context, kind string) {
	r.add("miss " + kind)
}
func (r *recorder) OnResponse(_ context.Context, _, path string, status int, _ time.Duration) {
	r.add(path)
}

func TestRegistry(t *testing.T) {
	defer Reset()
	Reset()

	if _, ok := Pipeline().(Noop); !ok {
		t.Fatalf("default pipeline hooks = %T", Pipeline())
	}

	rec := &recorder{}
	SetPipelineHooks(rec)
	SetCacheHooks(rec)
	SetHTTPHooks(rec)
	SetPipelineHooks(nil)

	ctx := context.Background()
	Pipeline().OnLayoutStart(ctx, 6)
	Pipeline().OnTreeStart(ctx, 6)
	Cache().OnCacheMiss(ctx, "cells")
	HTTP().OnResponse(ctx, "POST", "/api/tree", 200, time.Millisecond)

	want := []string{"layout start", "miss cells", "/api/tree"}
	if strings.Join(rec.events, "|") != strings.Join(want, "|") {
		t.Errorf("events = %q, want %q", rec.events, want)
	}

	Reset()
	if _, ok := HTTP().(Noop); !ok {
		t.Error("Reset left custom HTTP hooks installed")
	}
}

func TestRegistryConcurrent(t *testing.T) {
	defer Reset()
	rec := &recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); SetCacheHooks(rec) }()
		go func() { defer wg.Done(); Cache().OnCacheHit(context.Background(), "layout") }()
	}
	wg.Wait()
}

func TestLogHooks(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	RegisterLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))

	ctx := context.Background()
	Pipeline().OnLayoutComplete(ctx, 6, time.Millisecond, nil)
	Pipeline().OnRenderComplete(ctx, "pdf", 0, time.Millisecond, errors.New("rsvg-convert not found"))
	Cache().OnCacheHit(ctx, "tree")
	HTTP().OnResponse(ctx, "POST", "/api/layout", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"layout done", "locations=6", "render failed", "rsvg-convert not found", "cache hit", "kind=tree", "/api/layout"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
