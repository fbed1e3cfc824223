package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/iris/app"
	"github.com/kilianp07/iris/core/controller"
	"github.com/kilianp07/iris/core/events"
	"github.com/kilianp07/iris/core/form"
	coremetrics "github.com/kilianp07/iris/core/metrics"
	"github.com/kilianp07/iris/core/model"
	coremon "github.com/kilianp07/iris/core/monitoring"
	"github.com/kilianp07/iris/core/render"
	"github.com/kilianp07/iris/core/state"
	"github.com/kilianp07/iris/infra/logger"
	"github.com/kilianp07/iris/infra/metrics"
	"github.com/kilianp07/iris/infra/monitoring"
	"github.com/kilianp07/iris/ui/term"
)

func flagName(f model.Field) string { return strings.ReplaceAll(string(f), "_", "-") }

// sinkPublisher records transitions synchronously; predict has no bus.
type sinkPublisher struct {
	sink    coremetrics.MetricsSink
	monitor coremon.Monitor
	log     logger.Logger
}

func (p sinkPublisher) Publish(ev events.Transition) {
	if err := metrics.Record(p.sink, ev); err != nil {
		p.log.Warnf("record %s transition: %v", ev.Outcome(), err)
	}
	coremon.Report(p.monitor, ev)
}

func newPredictCmd(c *cli) *cobra.Command {
	var (
		in     form.Values
		random bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Submit one set of measurements and print the result",
		Example: "  iris predict --model \"Random Forest\" --sepal-length 5.1 --sepal-width 3.5 --petal-length 1.4 --petal-width 0.2\n" +
			"  iris predict --random --model SVM",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			cfg := c.cfg
			fields := form.NewFields(cfg.Form.DefaultModel)
			view := term.New(cmd.OutOrStdout(), render.New(cfg.Form.RenderConfig()))
			view.Quiet = true

			var predictor controller.Predictor = c.predictor
			if predictor == nil {
				predictor = app.NewPredictor(cfg.Endpoint)
			}
			log := logger.New("predict")
			monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
			if err != nil {
				return fmt.Errorf("sentry: %w", err)
			}
			defer monitor.Flush(2 * time.Second)
			sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
			if err != nil {
				return fmt.Errorf("metrics sink: %w", err)
			}
			defer func() {
				if err := coremetrics.CloseSink(sink); err != nil {
					log.Errorf("close metrics sink: %v", err)
				}
			}()
			ctl, err := controller.New(controller.Config{
				Range:        cfg.Form.Range(),
				ErrorDisplay: cfg.Form.ErrorDisplay(),
			}, fields, view, predictor,
				controller.WithLogger(log),
				controller.WithPublisher(sinkPublisher{sink: sink, monitor: monitor, log: log}))
			if err != nil {
				return err
			}
			defer ctl.Close()

			if random {
				ctl.RandomExample()
			}
			// Explicit flags win over the random example.
			var changed form.Values
			if cmd.Flags().Changed("model") {
				changed.Model = in.Model
			}
			for _, f := range model.Fields {
				if cmd.Flags().Changed(flagName(f)) {
					changed.Set(f, in.Get(f))
				}
			}
			fields.Update(changed, !cmd.Flags().Changed("model"))

			st, err := ctl.Submit(ctx)
			if st.Kind == state.KindError {
				// The view already printed the message.
				return fmt.Errorf("prediction failed: %w", errReported)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&in.Model, "model", "m", "", "model to use (defaults to form.default_model)")
	cmd.Flags().StringVar(&in.SepalLength, flagName(model.FieldSepalLength), "", "sepal length in cm")
	cmd.Flags().StringVar(&in.SepalWidth, flagName(model.FieldSepalWidth), "", "sepal width in cm")
	cmd.Flags().StringVar(&in.PetalLength, flagName(model.FieldPetalLength), "", "petal length in cm")
	cmd.Flags().StringVar(&in.PetalWidth, flagName(model.FieldPetalWidth), "", "petal width in cm")
	cmd.Flags().BoolVarP(&random, "random", "r", false, "start from a random reference example")
	return cmd
}
