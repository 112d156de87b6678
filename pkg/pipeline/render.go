package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/observability"
	"github.com/matzehuels/flowtower/pkg/render"
)

// Render draws l in every requested format. Previews are not cached; they
// are cheap to redraw from a cached layout.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, name := range opts.Formats {
		format, _ := render.ParseFormat(name)

		hooks.OnRenderStart(ctx, string(format))
		start := time.Now()
		data, err := render.Render(ctx, l, format, opts.RenderOptions())
		hooks.OnRenderComplete(ctx, string(format), len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[string(format)] = data
		opts.Logger.Debug("rendered", "format", format, "bytes", len(data))
	}
	return artifacts, nil
}
