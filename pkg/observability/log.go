package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug log line. It implements
// PipelineHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	Logger *log.Logger
}

// RegisterLogHooks installs LogHooks for all event categories.
func RegisterLogHooks(l *log.Logger) {
	h := LogHooks{Logger: l}
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h LogHooks) stage(stage string, duration time.Duration, err error, kv ...any) {
	kv = append(kv, "duration", duration.Round(time.Microsecond))
	if err != nil {
		h.Logger.Debug(stage+" failed", append(kv, "error", err)...)
		return
	}
	h.Logger.Debug(stage+" done", kv...)
}

func (h LogHooks) OnParseStart(_ context.Context, source string) {
	h.Logger.Debug("parse", "source", source)
}

func (h LogHooks) OnParseComplete(_ context.Context, source string, nodeCount int, d time.Duration, err error) {
	h.stage("parse", d, err, "source", source, "nodes", nodeCount)
}

func (h LogHooks) OnLayoutStart(_ context.Context, nodeCount int) {
	h.Logger.Debug("layout", "nodes", nodeCount)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, locations int, d time.Duration, err error) {
	h.stage("layout", d, err, "locations", locations)
}

func (h LogHooks) OnSerializeStart(_ context.Context, mode string) {
	h.Logger.Debug("cells", "mode", mode)
}

func (h LogHooks) OnSerializeComplete(_ context.Context, mode string, cells int, d time.Duration, err error) {
	h.stage("cells", d, err, "mode", mode, "cells", cells)
}

func (h LogHooks) OnTreeStart(_ context.Context, nodeCount int) {
	h.Logger.Debug("tree", "nodes", nodeCount)
}

func (h LogHooks) OnTreeComplete(_ context.Context, steps int, d time.Duration, err error) {
	h.stage("tree", d, err, "steps", steps)
}

func (h LogHooks) OnRenderStart(_ context.Context, format string) {
	h.Logger.Debug("render", "format", format)
}

func (h LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.stage("render", d, err, "format", format, "bytes", size)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "kind", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "kind", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, path string) {}

func (h LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}
