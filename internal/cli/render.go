package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/render"
)

// renderCommand creates the render command for drawing layout previews.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      sourceFlags
		spacing    layoutFlags
		formatsStr string
		labels     bool
		scale      float64
	)

	cmd := &cobra.Command{
		Use:   "render [pipeline.yaml]",
		Short: "Draw a preview of the computed layout",
		Long: `Draw a preview of the computed layout.

Nodes are pinned at their computed positions and flows are routed
orthogonally between the ports the layout chose. Formats are svg, png, pdf
and dot; pdf needs rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			spacing.apply(cmd, &opts.Layout)
			opts.Formats = parseFormats(formatsStr)
			if cmd.Flags().Changed("labels") {
				opts.ShowLabels = labels
			}
			if cmd.Flags().Changed("scale") {
				opts.Scale = scale
			}
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			for i, f := range opts.Formats {
				format, _ := render.ParseFormat(f)
				opts.Formats[i] = string(format)
			}
			return c.runRender(cmd.Context(), args[0], flags, opts)
		},
	}

	flags.register(cmd, "output file (single format) or base path (multiple)")
	spacing.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&labels, "labels", false, "print activity names inside their boxes")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "png resolution factor")
	return cmd
}

// basePath derives the base output path from the output and input file
// paths, stripping a known format extension from output.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender computes the layout of input and writes one preview per format.
func (c *CLI) runRender(ctx context.Context, input string, flags sourceFlags, opts pipeline.Options) error {
	if input == stdio && flags.output == "" {
		flags.output = stdio
	}
	if flags.output == stdio && len(opts.Formats) > 1 {
		return fmt.Errorf("cannot write %d formats to stdout", len(opts.Formats))
	}
	if err := c.sourceOptions(input, flags, &opts); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	g, hash, err := runner.Parse(ctx, opts)
	if err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}
	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, hash, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	sp := c.spin(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	artifacts, err := runner.Render(ctx, l, opts)
	if err != nil {
		sp.Fail("Render failed")
		return err
	}
	sp.Stop()

	if flags.output == stdio {
		_, err := c.Stdout.Write(artifacts[opts.Formats[0]])
		return err
	}

	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	base := basePath(flags.output, input)
	var written []string
	for _, f := range formats {
		path := base + "." + f
		if len(formats) == 1 && flags.output != "" {
			path = flags.output
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		loggerFromContext(ctx).Debug("wrote preview", "format", f, "bytes", len(artifacts[f]))
		written = append(written, path)
	}

	c.ui().ok("Rendered %d preview(s)", len(written))
	for _, path := range written {
		c.ui().file(path)
	}
	c.ui().stats(g.NodeCount(), g.FlowCount(), cacheHit)
	return nil
}
