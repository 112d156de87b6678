package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// buildCommand runs every stage in one pass and writes all results next to
// each other.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags      sourceFlags
		spacing    layoutFlags
		mode       string
		formatsStr string
	)
	cmd := &cobra.Command{
		Use:   "build [pipeline.yaml]",
		Short: "Run layout, cells, tree and render in one pass",
		Long: `Run every stage on one pipeline and write the results into a directory:

  <name>.layout.json  <name>.cells.json  <name>.tree.json  <name>.<format>

The directory defaults to the one holding the input. Previews are only
drawn when --format is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == stdio {
				return fmt.Errorf("build writes several files and needs a named input")
			}
			opts := c.baseOptions()
			spacing.apply(cmd, &opts.Layout)
			if cmd.Flags().Changed("mode") {
				opts.Mode = mode
			}
			if formatsStr != "" {
				opts.Formats = parseFormats(formatsStr)
			}
			return c.runBuild(cmd.Context(), args[0], flags, opts)
		},
	}
	flags.register(cmd, "output directory (default: next to the input)")
	spacing.register(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "cells mode: horizontal, vertical")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "preview format(s): svg, png, pdf, dot (comma-separated)")
	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input string, flags sourceFlags, opts pipeline.Options) error {
	if err := c.sourceOptions(input, flags, &opts); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sp := c.spin(ctx, "Building "+filepath.Base(input)+"...")
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		sp.Fail("Build failed")
		return err
	}
	sp.Stop()

	dir := flags.output
	if dir == "" {
		dir = filepath.Dir(input)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	base := filepath.Join(dir, name)

	var written []string
	for suffix, v := range map[string]any{
		".layout.json": res.Layout,
		".cells.json":  res.Cells,
		".tree.json":   res.Tree,
	} {
		if err := c.writeResult(base+suffix, v); err != nil {
			return err
		}
		written = append(written, base+suffix)
	}
	for format, data := range res.Artifacts {
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	slices.Sort(written)

	hits := res.CacheInfo
	c.ui().ok("Built %s", name)
	for _, path := range written {
		c.ui().file(path)
	}
	c.ui().stats(res.Stats.NodeCount, res.Stats.FlowCount, hits.LayoutHit && hits.CellsHit && hits.TreeHit)
	c.ui().detail("parse %s · layout %s · cells %s · tree %s",
		res.Stats.ParseTime, res.Stats.LayoutTime, res.Stats.CellsTime, res.Stats.TreeTime)
	return nil
}
