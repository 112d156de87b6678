package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/pipeline"
)

// treeCommand creates the tree command for building the nested list view.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		flags          sourceFlags
		interactive    bool
		noSubprocesses bool
		start, end     string
		parallel       string
	)

	cmd := &cobra.Command{
		Use:   "tree [pipeline.yaml]",
		Short: "Build the nested list tree of a pipeline",
		Long: `Build the nested list tree of a pipeline.

Every node appears once, nested under the gateway branch that owns it.
Condition branches that return to an earlier step are marked as loops.
The output is written to <input>.tree.json; --interactive opens a browser
in the terminal instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			opts.NoSubprocesses = noSubprocesses
			if cmd.Flags().Changed("start-label") {
				opts.Labels.Start = start
			}
			if cmd.Flags().Changed("end-label") {
				opts.Labels.End = end
			}
			if cmd.Flags().Changed("parallel-label") {
				opts.Labels.Parallel = parallel
			}
			return c.runTree(cmd.Context(), args[0], flags, opts, interactive)
		},
	}

	flags.register(cmd, "output file (default: <input>.tree.json, - for stdout)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the tree in the terminal")
	cmd.Flags().BoolVar(&noSubprocesses, "no-subprocesses", false, "do not expand sub-workflows")
	cmd.Flags().StringVar(&start, "start-label", "", "title of the start entry")
	cmd.Flags().StringVar(&end, "end-label", "", "title of the end entry")
	cmd.Flags().StringVar(&parallel, "parallel-label", "", "title of parallel branch entries")
	return cmd
}

// runTree builds the tree and either writes it or opens the browser.
func (c *CLI) runTree(ctx context.Context, input string, flags sourceFlags, opts pipeline.Options, interactive bool) error {
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
	nodes, steps, cacheHit, err := runner.TreeWithCacheInfo(ctx, g, hash, opts)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	loggerFromContext(ctx).Debug("tree built", "steps", steps, "cached", cacheHit)

	if interactive {
		_, err := tea.NewProgram(NewTreeModel(nodes), tea.WithContext(ctx)).Run()
		return err
	}

	out := outputPath(input, flags.output, ".tree.json")
	if err := c.writeResult(out, nodes); err != nil {
		return err
	}
	if out == stdio {
		return nil
	}

	entries, loops := 0, 0
	graph.Walk(nodes, func(n *graph.TreeNode, _ int) bool {
		entries++
		if n.IsLoop {
			loops++
		}
		return true
	})
	c.ui().ok("Tree complete")
	c.ui().file(out)
	c.ui().stats(g.NodeCount(), g.FlowCount(), cacheHit)
	c.ui().detail("%d entries", entries)
	if loops > 0 {
		c.ui().detail("%d loop branches", loops)
	}
	c.ui().next("Browse", appName+" tree -i "+input)
	return nil
}
