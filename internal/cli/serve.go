package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/internal/server"
	"github.com/matzehuels/barrace/pkg/cache"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxBody int64
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve frames over HTTP",
		Long: `Serve exposes validation, frame rendering and timeline planning as a JSON
HTTP API:

  GET  /healthz
  GET  /version
  POST /v1/validate
  POST /v1/frames
  POST /v1/timeline/plan

The server keeps rendered frames in memory unless --cache-backend selects a
shared backend (redis, mongo) for several instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("cache-backend") {
				c.cache.backend = cache.BackendMemory
			}
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner,
				server.WithLogger(loggerFromContext(ctx)),
				server.WithMaxBodyBytes(maxBody),
				server.WithRequestTimeout(timeout))
			printInfo("Listening on %s", StyleHighlight.Render("http://"+addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultRequestTimeout, "per-request timeout")

	return cmd
}
