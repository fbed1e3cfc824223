package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/iris/app"
	"github.com/kilianp07/iris/infra/logger"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction form over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			var opts []app.Option
			if c.predictor != nil {
				opts = append(opts, app.WithPredictor(c.predictor))
			}
			svc, err := app.New(c.cfg, opts...)
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					logger.New("main").Errorf("service close: %v", err)
				}
			}()
			return svc.Run(ctx)
		},
	}
}
