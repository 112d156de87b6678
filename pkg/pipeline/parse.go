package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/check"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/observability"
)

// Parse decodes the payload in opts.Source and returns the graph with the
// payload's content hash. Parsing is not cached: derived results are keyed
// by the hash instead.
//
// Shapes the layout and tree builders tolerate but drop, such as flows to
// missing nodes or unreachable steps, are logged as warnings on opts.Logger.
func (r *Runner) Parse(ctx context.Context, opts Options) (*flow.Graph, string, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, "", err
	}
	name := opts.SourceName
	if name == "" {
		name = "payload"
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, name)
	start := time.Now()

	g, err := flow.Decode(bytes.NewReader(opts.Source), opts.Format)
	count := 0
	if g != nil {
		count = g.NodeCount()
	}
	hooks.OnParseComplete(ctx, name, count, time.Since(start), err)
	if err != nil {
		return nil, "", err
	}
	for _, f := range check.Structure(g) {
		opts.Logger.Warn(f.Message, "source", name, "at", f.Path)
	}
	return g, cache.Hash(opts.Source), nil
}
