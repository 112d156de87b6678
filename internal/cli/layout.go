package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// layoutFlags override the [layout] section of the config file. Only flags
// set on the command line apply.
type layoutFlags struct {
	cfg layout.Config
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	def := layout.DefaultConfig()
	cmd.Flags().Float64Var(&f.cfg.BaseX, "base-x", def.BaseX, "x of the start event")
	cmd.Flags().Float64Var(&f.cfg.BaseY, "base-y", def.BaseY, "y of the start event")
	cmd.Flags().Float64Var(&f.cfg.HorizontalSpacing, "horizontal-spacing", def.HorizontalSpacing, "gap between a node and its successor")
	cmd.Flags().Float64Var(&f.cfg.VerticalSpacing, "vertical-spacing", def.VerticalSpacing, "gap between stacked branches")
	cmd.Flags().Float64Var(&f.cfg.BranchOffset, "branch-offset", def.BranchOffset, "gap after exclusive and conditional gateways")
}

func (f *layoutFlags) apply(cmd *cobra.Command, dst *layout.Config) {
	set := func(name string, dst *float64, v float64) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("base-x", &dst.BaseX, f.cfg.BaseX)
	set("base-y", &dst.BaseY, f.cfg.BaseY)
	set("horizontal-spacing", &dst.HorizontalSpacing, f.cfg.HorizontalSpacing)
	set("vertical-spacing", &dst.VerticalSpacing, f.cfg.VerticalSpacing)
	set("branch-offset", &dst.BranchOffset, f.cfg.BranchOffset)
}

// layoutCommand creates the layout command for computing canvas positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  sourceFlags
		spacing layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [pipeline.yaml]",
		Short: "Compute canvas positions for a pipeline tree",
		Long: `Compute canvas positions for a pipeline tree.

The layout command reads a pipeline tree (JSON or YAML, "-" for stdin) and
writes the location of every node and the ports of every flow to
<input>.layout.json. Use 'render' to preview the result.

Results are cached by payload hash and spacing constants.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			spacing.apply(cmd, &opts.Layout)
			return c.runLayout(cmd.Context(), args[0], flags, opts)
		},
	}

	flags.register(cmd, "output file (default: <input>.layout.json, - for stdout)")
	spacing.register(cmd)
	return cmd
}

// runLayout parses the pipeline tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, flags sourceFlags, opts pipeline.Options) error {
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

	sp := c.spin(ctx, "Computing layout...")
	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, hash, opts)
	if err != nil {
		sp.Fail("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	sp.Stop()

	out := outputPath(input, flags.output, ".layout.json")
	if err := c.writeResult(out, l); err != nil {
		return err
	}
	if out == stdio {
		return nil
	}

	c.ui().ok("Layout complete")
	c.ui().file(out)
	c.ui().stats(g.NodeCount(), g.FlowCount(), cacheHit)
	if missing := g.NodeCount() - len(l.Locations); missing > 0 {
		c.ui().warn("%d nodes left unplaced", missing)
	}
	c.ui().next("Preview", appName+" render "+input)
	return nil
}

// cellsCommand creates the cells command for serializing render cells.
func (c *CLI) cellsCommand() *cobra.Command {
	var (
		flags  sourceFlags
		spacing layoutFlags
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "cells [pipeline.yaml]",
		Short: "Serialize a pipeline tree into canvas render cells",
		Long: `Serialize a pipeline tree into canvas render cells.

Horizontal mode emits one node cell per location and one edge cell per flow.
Vertical mode additionally wraps nodes in nested lane groups, one per
parallel branch. The output is written to <input>.cells.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			spacing.apply(cmd, &opts.Layout)
			if cmd.Flags().Changed("mode") {
				opts.Mode = mode
			}
			return c.runCells(cmd.Context(), args[0], flags, opts)
		},
	}

	flags.register(cmd, "output file (default: <input>.cells.json, - for stdout)")
	spacing.register(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", string(pipeline.DefaultMode), "canvas mode: horizontal, vertical")
	return cmd
}

// runCells computes the layout and serializes it in the requested mode.
func (c *CLI) runCells(ctx context.Context, input string, flags sourceFlags, opts pipeline.Options) error {
	if err := opts.ValidateForCells(); err != nil {
		return err
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
	l, err := runner.Layout(ctx, g, hash, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	cells, cacheHit, err := runner.CellsWithCacheInfo(ctx, l, g, hash, opts)
	if err != nil {
		return fmt.Errorf("serialize cells: %w", err)
	}

	out := outputPath(input, flags.output, ".cells.json")
	if err := c.writeResult(out, cells); err != nil {
		return err
	}
	if out == stdio {
		return nil
	}

	groups := 0
	for i := range cells {
		if cells[i].IsGroup() {
			groups++
		}
	}
	c.ui().ok("Serialized %d cells (%s)", len(cells), opts.Mode)
	c.ui().file(out)
	c.ui().stats(g.NodeCount(), g.FlowCount(), cacheHit)
	if groups > 0 {
		c.ui().detail("%d lane groups", groups)
	}
	return nil
}
