package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bloodline/internal/cli/config"
	"github.com/leapstack-labs/bloodline/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the lineage HTTP API",
		Long: `Start an HTTP server that analyzes SQL posted to it.

Endpoints:
  POST /api/lineage      lineage of every statement
  POST /api/graph        table graph of a script
  POST /api/viz/tree     table tree of one statement
  POST /api/viz/sankey   column sankey of one statement
  GET  /healthz          health check

Request bodies are JSON: {"sql": "...", "normalize": true, "statement": 0}.`,
		Example: `  bloodline serve
  bloodline serve --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := NewCommandContext(cmd)

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Addr:      c.Cfg.Server.Addr,
				Normalize: c.Cfg.Normalize,
				Logger:    c.Logger,
			})

			c.Renderer.Printf("Serving lineage API on http://%s\n", c.Cfg.Server.Addr)
			c.Renderer.Println("Press Ctrl+C to stop")
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default: "+config.DefaultServerAddr+")")

	return cmd
}
