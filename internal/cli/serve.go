package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/podfeed/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the feed over HTTP",
		Long: `Serve publishes the feed at /feed.xml. The feed is rebuilt on every
request, so new pods show up as soon as the Specs checkout and the creation
dates are updated. /healthz reports liveness.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			ws, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			if addr == "" {
				addr = ws.cfg.Server.Addr
			}
			srv := server.New(addr, ws.runner, ws.options(), logger)
			printInfo("Serving feed at %s", StyleLink.Render("http://"+srv.Addr()+"/feed.xml"))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr, "+server.DefaultAddr+")")
	return cmd
}
