package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/buildinfo"
	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/config"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/observability"
	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flowtower"

// stdio names standard input or output in place of a file path.
const stdio = "-"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdin and Stdout back the "-" path.
	Stdin  io.Reader
	Stdout io.Writer
	// Status receives progress and summary lines.
	Status io.Writer

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Status: os.Stderr,
		cfg:    config.Default(),
	}
}

func (c *CLI) ui() console { return console{w: c.Status} }

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Flowtower lays out workflow pipeline graphs",
		Long: `Flowtower turns workflow pipeline trees into canvas layouts, render cells
and nested list trees, and serves the same stages over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.RegisterLogHooks(c.Logger)
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.cellsCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default file
// when it exists.
func (c *CLI) loadConfig() error {
	path, optional := c.configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}
	cfg, unknown, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	for _, key := range unknown {
		c.Logger.Warn("unknown config key", "key", key, "file", path)
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	opts := c.cfg.CacheOptions()
	if noCache {
		opts.Backend = cache.BackendNone
	}
	if opts.Backend == cache.BackendFile {
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("file cache disabled", "error", err)
			opts.Backend = cache.BackendNone
		}
		opts.Dir = dir
	}
	ch, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured file cache directory, or the XDG default
// (~/.cache/flowtower/).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// outputPath derives an output file from the input path: graph.yaml becomes
// graph<suffix>. Reading stdin writes to stdout.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	if input == stdio {
		return stdio
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// =============================================================================
// Input and Output
// =============================================================================

// readSource reads a pipeline tree from path, or from stdin for "-".
func (c *CLI) readSource(path string) ([]byte, error) {
	if path == stdio {
		data, err := io.ReadAll(io.LimitReader(c.Stdin, pipeline.MaxSourceSize+1))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeResult writes v as indented JSON to path, or to stdout for "-".
func (c *CLI) writeResult(path string, v any) error {
	if path == stdio {
		return graph.WriteJSON(c.Stdout, v)
	}
	if err := graph.WriteFile(v, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// sourceFlags are the input flags shared by the pipeline commands.
type sourceFlags struct {
	output  string
	format  string
	noCache bool
	refresh bool
}

func (f *sourceFlags) register(cmd *cobra.Command, outputHelp string) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", outputHelp)
	cmd.Flags().StringVar(&f.format, "input-format", "", "input format: json, yaml (default: by extension)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
}

// baseOptions returns pipeline options seeded from the config file.
func (c *CLI) baseOptions() pipeline.Options {
	return pipeline.Options{
		Layout:     c.cfg.Layout,
		Mode:       c.cfg.Render.Mode,
		Labels:     c.cfg.Labels(),
		ShowLabels: c.cfg.Render.Labels,
		Scale:      c.cfg.Render.Scale,
		Logger:     c.Logger,
	}
}

// sourceOptions reads input and fills the parse fields of opts.
func (c *CLI) sourceOptions(input string, flags sourceFlags, opts *pipeline.Options) error {
	data, err := c.readSource(input)
	if err != nil {
		return err
	}
	opts.Source = data
	opts.SourceName = input
	opts.Refresh = flags.refresh
	switch {
	case flags.format != "":
		opts.Format = flow.Format(strings.ToLower(flags.format))
	case input != stdio:
		opts.Format = flow.FormatFromPath(input)
	}
	return nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{string(render.FormatSVG)}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
