package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/iris/backend"
	"github.com/kilianp07/iris/infra/metrics"
)

func newMockCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run a local stand-in for the prediction backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			mockCfg := c.cfg.Mock
			if cmd.Flags().Changed("listen") {
				mockCfg.Address = addr
			}
			srv := backend.NewPredictServerMock(mockCfg)
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Start(ctx) })
			if port := c.cfg.Metrics.PrometheusPort; port != "" {
				g.Go(func() error { return metrics.StartPromServer(ctx, port) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&addr, "listen", "l", "", "listen address (defaults to mock.address)")
	return cmd
}
