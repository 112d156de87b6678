package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/observability"
	"github.com/matzehuels/flowtower/pkg/tree"
)

// TreeWithCacheInfo builds the list tree of g with caching. It returns the
// traversal step count (zero on a cache hit) and cache hit info.
func (r *Runner) TreeWithCacheInfo(ctx context.Context, g *flow.Graph, graphHash string, opts Options) ([]*graph.TreeNode, int, bool, error) {
	r.applyLogger(&opts)

	key := r.Keyer.TreeKey(graphHash, opts.TreeKeyOpts())
	if data, hit := r.lookup(ctx, opts, "tree", key); hit {
		cached, err := graph.UnmarshalTree(data)
		if err == nil {
			return cached, 0, true, nil
		}
		r.evict(ctx, opts, "tree", key, err)
	}

	hooks := observability.Pipeline()
	hooks.OnTreeStart(ctx, g.NodeCount())
	start := time.Now()
	b := tree.NewBuilder(opts.TreeOptions()...)
	t := b.Build(g)
	steps := b.Stats().Steps
	hooks.OnTreeComplete(ctx, steps, time.Since(start), nil)

	opts.Logger.Debug("tree walk",
		"steps", steps,
		"nodes", b.Stats().Nodes,
		"loops", b.Stats().Loops)

	if data, err := graph.MarshalTree(t); err == nil {
		r.store(ctx, opts, "tree", key, data, cache.TTLTree)
	}
	return t, steps, false, nil
}

// Tree is a convenience wrapper that discards the step count and cache hit
// info.
func (r *Runner) Tree(ctx context.Context, g *flow.Graph, graphHash string, opts Options) ([]*graph.TreeNode, error) {
	t, _, _, err := r.TreeWithCacheInfo(ctx, g, graphHash, opts)
	return t, err
}
