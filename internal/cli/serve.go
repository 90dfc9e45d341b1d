package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/server"
)

// serveCommand creates the serve command, which exposes a lineage document
// to an interactive viewer over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve [lineage.json]",
		Short: "Serve a lineage graph over HTTP",
		Long: `Serve a lineage graph over HTTP.

The JSON API under /api answers the viewer's callbacks: attribute tracing,
node expansion, orientation switch, focus, search and export. With --watch
the document is reloaded whenever it changes on disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("watch") {
				watch = c.Config.Server.Watch
			}
			return c.runServe(cmd.Context(), args[0], addr, watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the document when it changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, addr string, watch bool) error {
	srv, err := server.New(ctx, server.Config{
		Path:    input,
		Addr:    addr,
		Watch:   watch,
		Options: c.engineOptions(),
		Logger:  c.Logger,
	})
	if err != nil {
		return err
	}
	printSuccess("Serving %s", input)
	printKeyValue("address", "http://"+addr)
	if watch {
		printKeyValue("watching", input)
	}
	return srv.Serve(ctx)
}
