package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline stages over HTTP",
		Long: `Serve the pipeline stages over HTTP.

Endpoints:
  POST /api/layout   canvas positions and ports
  POST /api/cells    render cells (mode: horizontal, vertical)
  POST /api/tree     nested list tree
  POST /api/render   preview image (format: svg, png, pdf, dot)
  POST /api/check    lint report
  GET  /healthz      liveness

Each request body carries the pipeline tree in "pipeline_tree". Settings
from the config file are the defaults for every request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			defaults := c.baseOptions()
			srv := server.New(runner, c.Logger,
				server.WithAllowedOrigins(c.cfg.Server.AllowedOrigins),
				server.WithDefaults(defaults))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
