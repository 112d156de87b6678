package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local result cache",
		Long: `Inspect or clear the local result cache.

Layouts, cells and trees are cached by payload hash and settings. Only the
file backend lives on this machine; Redis and MongoDB entries expire on
their own.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := c.cacheDir()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.Stdout, dir)
				return err
			},
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show the backend, entry count and size",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fc, ok, err := c.fileCache()
				if err != nil || !ok {
					return err
				}
				n, size, err := fc.Usage()
				if err != nil {
					return fmt.Errorf("scan %s: %w", fc.Dir(), err)
				}
				c.ui().note("%d entries, %s", n, humanBytes(size))
				c.ui().detail("Directory: %s", fc.Dir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached layout, cells and tree",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fc, ok, err := c.fileCache()
				if err != nil || !ok {
					return err
				}
				n, err := fc.Clear()
				if err != nil {
					return fmt.Errorf("clear %s: %w", fc.Dir(), err)
				}
				if n == 0 {
					c.ui().note("Cache is empty")
					return nil
				}
				c.ui().ok("Cleared %d cached entries", n)
				c.ui().detail("Directory: %s", fc.Dir())
				return nil
			},
		},
	)
	return cmd
}

// fileCache opens the configured file cache. It reports false, after a
// warning, when another backend is configured.
func (c *CLI) fileCache() (*cache.FileCache, bool, error) {
	if b, _ := cache.ParseBackend(c.cfg.Cache.Backend); b != cache.BackendFile {
		c.ui().warn("Cache backend is %s; only the file cache is managed here", b)
		return nil, false, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return nil, false, fmt.Errorf("get cache dir: %w", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, false, err
	}
	return fc, true, nil
}

// humanBytes formats n with a binary unit, as in "12.4 KiB".
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
