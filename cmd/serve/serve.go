// Package serve implements the serve command exposing the ledger reports over HTTP.
package serve

import (
	"context"

	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/container"

	"github.com/spf13/cobra"
)

var address string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger reports as a read-only JSON API",
	Long: `Serve the stored transactions as a read-only JSON API for dashboards.

Endpoints:
  GET /health
  GET /api/summary
  GET /api/expenses?year=2024&month=3
  GET /api/available-months
  GET /api/total

The server stops gracefully on interrupt.`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVarP(&address, "address", "l", "", "Listen address (default from config, e.g. :8080)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	return Serve(cmd.Context(), c, address)
}

// Serve runs the API server until ctx is canceled.
func Serve(ctx context.Context, c *container.Container, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if addr == "" {
		addr = c.GetConfig().API.Address
	}
	srv, err := c.NewAPIServer(ctx)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, addr)
}
