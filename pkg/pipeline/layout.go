package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/cells"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/observability"
)

// =============================================================================
// Layout
// =============================================================================

// LayoutWithCacheInfo computes the layout of g with caching and returns
// cache hit info. graphHash identifies the payload g was parsed from.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *flow.Graph, graphHash string, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}

	key := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())
	if data, hit := r.lookup(ctx, opts, "layout", key); hit {
		cached, err := graph.UnmarshalLayout(data)
		if err == nil {
			return cached, true, nil
		}
		r.evict(ctx, opts, "layout", key, err)
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	start := time.Now()
	l := layout.Compute(g, layout.WithConfig(opts.Layout))
	hooks.OnLayoutComplete(ctx, len(l.Locations), time.Since(start), nil)

	if data, err := graph.MarshalLayout(l); err == nil {
		r.store(ctx, opts, "layout", key, data, cache.TTLLayout)
	}
	return l, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *flow.Graph, graphHash string, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, g, graphHash, opts)
	return l, err
}

// =============================================================================
// Cells
// =============================================================================

// CellsWithCacheInfo serializes l with caching and returns cache hit info.
// The layout must have been computed from g with the same options.
func (r *Runner) CellsWithCacheInfo(ctx context.Context, l graph.Layout, g *flow.Graph, graphHash string, opts Options) ([]graph.Cell, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCells(); err != nil {
		return nil, false, err
	}
	mode, _ := cells.ParseMode(opts.Mode)

	key := r.Keyer.CellsKey(graphHash, opts.CellsKeyOpts())
	if data, hit := r.lookup(ctx, opts, "cells", key); hit {
		cached, err := graph.UnmarshalCells(data)
		if err == nil {
			return cached, true, nil
		}
		r.evict(ctx, opts, "cells", key, err)
	}

	hooks := observability.Pipeline()
	hooks.OnSerializeStart(ctx, string(mode))
	start := time.Now()
	cs, err := cells.Serialize(l, g, mode)
	hooks.OnSerializeComplete(ctx, string(mode), len(cs), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := graph.MarshalCells(cs); err == nil {
		r.store(ctx, opts, "cells", key, data, cache.TTLCells)
	}
	return cs, false, nil
}

// Cells is a convenience wrapper that discards the cache hit info.
func (r *Runner) Cells(ctx context.Context, l graph.Layout, g *flow.Graph, graphHash string, opts Options) ([]graph.Cell, error) {
	cs, _, err := r.CellsWithCacheInfo(ctx, l, g, graphHash, opts)
	return cs, err
}
