// Package observability lets an application watch pipeline stages, cache
// traffic and HTTP requests without the core packages importing a metrics
// or tracing backend.
//
// Events go to three hook sets, each a no-op until main registers an
// implementation. The layout, cells and tree packages never emit events;
// the pipeline runner and the HTTP server do:
//
//	observability.Pipeline().OnLayoutStart(ctx, g.NodeCount())
//	l := layout.Compute(g)
//	observability.Pipeline().OnLayoutComplete(ctx, len(l.Locations), time.Since(start), nil)
//
// [LogHooks] implements all three sets on top of a charm logger and is what
// the CLI installs with --verbose:
//
//	observability.RegisterLogHooks(logger)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks observes the pipeline stages. Every Complete call follows
// its Start call on the same goroutine.
type PipelineHooks interface {
	OnParseStart(ctx context.Context, source string)
	OnParseComplete(ctx context.Context, source string, nodeCount int, duration time.Duration, err error)

	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, locations int, duration time.Duration, err error)

	OnSerializeStart(ctx context.Context, mode string)
	OnSerializeComplete(ctx context.Context, mode string, cells int, duration time.Duration, err error)

	OnTreeStart(ctx context.Context, nodeCount int)
	OnTreeComplete(ctx context.Context, steps int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// CacheHooks observes cache traffic. keyType is the stage: "layout",
// "cells" or "tree".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks observes requests served by the API.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// Noop implements every hook set and does nothing.
type Noop struct{}

func (Noop) OnParseStart(context.Context, string)                                   {}
func (Noop) OnParseComplete(context.Context, string, int, time.Duration, error)     {}
func (Noop) OnLayoutStart(context.Context, int)                                     {}
func (Noop) OnLayoutComplete(context.Context, int, time.Duration, error)            {}
func (Noop) OnSerializeStart(context.Context, string)                               {}
func (Noop) OnSerializeComplete(context.Context, string, int, time.Duration, error) {}
func (Noop) OnTreeStart(context.Context, int)                                       {}
func (Noop) OnTreeComplete(context.Context, int, time.Duration, error)              {}
func (Noop) OnRenderStart(context.Context, string)                                  {}
func (Noop) OnRenderComplete(context.Context, string, int, time.Duration, error)    {}
func (Noop) OnCacheHit(context.Context, string)                                     {}
func (Noop) OnCacheMiss(context.Context, string)                                    {}
func (Noop) OnCacheSet(context.Context, string, int)                                {}
func (Noop) OnRequest(context.Context, string, string)                              {}
func (Noop) OnResponse(context.Context, string, string, int, time.Duration)         {}

var (
	mu       sync.RWMutex
	pipeline PipelineHooks = Noop{}
	caches   CacheHooks    = Noop{}
	served   HTTPHooks     = Noop{}
)

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) { set(&pipeline, h) }

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { set(&caches, h) }

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { set(&served, h) }

func set[T comparable](dst *T, h T) {
	var zero T
	if h == zero {
		return
	}
	mu.Lock()
	*dst = h
	mu.Unlock()
}

func get[T any](src *T) T {
	mu.RLock()
	defer mu.RUnlock()
	return *src
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return get(&pipeline) }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return get(&caches) }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return get(&served) }

// Reset reinstalls the no-op hooks.
func Reset() {
	mu.Lock()
	pipeline, caches, served = Noop{}, Noop{}, Noop{}
	mu.Unlock()
}
