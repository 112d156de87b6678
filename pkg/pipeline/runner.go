package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/observability"
)

// Runner runs pipeline stages against a cache. The CLI and the HTTP API
// share it, so both hit the same cache entries for the same payload.
//
// A Runner holds no per-call state and is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a Runner. Nil arguments select the default keyer, a
// NullCache and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// timed runs stage and returns how long it took.
func timed(stage func() error) (time.Duration, error) {
	start := time.Now()
	err := stage()
	return time.Since(start), err
}

// Execute parses the payload and runs every derived stage: layout, cells,
// tree and, when formats are requested, render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{Artifacts: make(map[string][]byte)}
	st, hits := &res.Stats, &res.CacheInfo
	stages := []struct {
		name string
		took *time.Duration
		run  func() error
	}{
		{"parse", &st.ParseTime, func() (err error) {
			res.Graph, res.GraphHash, err = r.Parse(ctx, opts)
			return err
		}},
		{"layout", &st.LayoutTime, func() (err error) {
			res.Layout, hits.LayoutHit, err = r.LayoutWithCacheInfo(ctx, res.Graph, res.GraphHash, opts)
			return err
		}},
		{"cells", &st.CellsTime, func() (err error) {
			res.Cells, hits.CellsHit, err = r.CellsWithCacheInfo(ctx, res.Layout, res.Graph, res.GraphHash, opts)
			return err
		}},
		{"tree", &st.TreeTime, func() (err error) {
			res.Tree, st.TreeSteps, hits.TreeHit, err = r.TreeWithCacheInfo(ctx, res.Graph, res.GraphHash, opts)
			return err
		}},
		{"render", &st.RenderTime, func() (err error) {
			if len(opts.Formats) == 0 {
				return nil
			}
			res.Artifacts, err = r.Render(ctx, res.Layout, opts)
			return err
		}},
	}
	for _, stage := range stages {
		took, err := timed(stage.run)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stage.name, err)
		}
		*stage.took = took
	}
	st.NodeCount, st.FlowCount = res.Graph.NodeCount(), res.Graph.FlowCount()

	opts.Logger.Info("pipeline built",
		"nodes", st.NodeCount,
		"locations", len(res.Layout.Locations),
		"cells", len(res.Cells),
		"entries", len(res.Tree),
		"artifacts", len(res.Artifacts),
		"cache", *hits)
	return res, nil
}

// Close closes the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// applyLogger gives opts the runner's logger unless the caller set one.
// Stages log through opts.Logger, so a request can carry its own.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// lookup reads key unless opts.Refresh is set and reports the outcome to
// the cache hooks. Read errors count as misses.
func (r *Runner) lookup(ctx context.Context, opts Options, kind, key string) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Debug("cache read failed", "kind", kind, "error", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, kind)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, kind)
	return nil, false
}

// store writes data at key. Write errors are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, opts Options, kind, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		opts.Logger.Debug("cache write failed", "kind", kind, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// evict drops an entry that no longer decodes, so it is not read again if
// the recomputed result cannot be stored.
func (r *Runner) evict(ctx context.Context, opts Options, kind, key string, cause error) {
	opts.Logger.Warn("dropping unreadable cache entry", "kind", kind, "error", cause)
	if err := r.Cache.Delete(ctx, key); err != nil {
		opts.Logger.Debug("cache delete failed", "kind", kind, "error", err)
	}
}
