package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/vidtree/pkg/cache"
	"github.com/matzehuels/vidtree/pkg/server"
)

// apiKeyPrefix scopes API cache entries away from CLI entries in a shared
// backend.
const apiKeyPrefix = "api:"

// serveCommand creates the serve command, which runs the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxBody int64
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP",
		Long: `Serve the layout engine over HTTP.

Endpoints:
  GET  /healthz
  POST /v1/layout
  POST /v1/layout/hierarchical

The server uses the configured cache backend; point several instances at the
same Redis or MongoDB to share layouts between them. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc := c.Config.Server
			if !cmd.Flags().Changed("addr") && sc.Addr != "" {
				addr = sc.Addr
			}
			if !cmd.Flags().Changed("max-body") && sc.MaxBodyBytes > 0 {
				maxBody = sc.MaxBodyBytes
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()
			runner.Keyer = cache.NewScopedKeyer(runner.Keyer, apiKeyPrefix)

			srv := server.New(runner, c.Logger.WithPrefix("http"), server.WithMaxBodyBytes(maxBody))
			printInfo("Listening on %s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "request body limit in bytes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
