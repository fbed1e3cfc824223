package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/iris/app"
	"github.com/kilianp07/iris/core/controller"
	"github.com/kilianp07/iris/infra/logger"
	"github.com/kilianp07/iris/qa/scenarios"
)

func newScenarioCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "scenario FILE...",
		Short: "Replay YAML scenarios against the prediction endpoint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			var predictor controller.Predictor = c.predictor
			if predictor == nil {
				predictor = app.NewPredictor(c.cfg.Endpoint)
			}
			cfg := controller.Config{Range: c.cfg.Form.Range(), ErrorDisplay: c.cfg.Form.ErrorDisplay()}
			log := logger.New("scenario")

			var reports []scenarios.Report
			failed := 0
			for _, path := range args {
				sc, err := scenarios.Load(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				rep, err := scenarios.Run(ctx, sc, cfg, predictor, controller.WithLogger(log))
				if err != nil {
					return fmt.Errorf("%s: %w", sc.Name, err)
				}
				failed += rep.Failures
				reports = append(reports, rep)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SCENARIO\tCASE\tRESULT\tWANT\tGOT")
				for _, rep := range reports {
					for _, r := range rep.Results {
						status := "ok"
						if !r.Passed {
							status = "FAIL"
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rep.Scenario, r.Name, status, r.Want, r.Got)
					}
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d case(s) failed: %w", failed, errReported)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reports as JSON")
	return cmd
}
