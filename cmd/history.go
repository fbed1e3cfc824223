package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/iris/config"
	"github.com/kilianp07/iris/core/factory"
	"github.com/kilianp07/iris/infra/history"
	"github.com/kilianp07/iris/pkg/export"
)

// historyPath returns the database of the first configured sqlite sink.
func historyPath(cfg *config.Config) string {
	for _, s := range cfg.Metrics.Sinks {
		if s.Type != "sqlite" {
			continue
		}
		var c history.Config
		if err := factory.Decode(s.Conf, &c); err == nil && c.Path != "" {
			return c.Path
		}
	}
	return ""
}

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		dbPath  string
		format  string
		filter  history.Filter
		since   time.Duration
		summary bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show submissions stored by the sqlite sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = historyPath(c.cfg)
			}
			if dbPath == "" {
				return errors.New("no sqlite sink configured; pass --db")
			}
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if summary {
				rows, err := store.Summarize()
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "MODEL\tOUTCOME\tCOUNT\tAVG LATENCY")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%.1fms\n", r.Model, r.Outcome, r.Count, r.AvgLatencyMS)
				}
				return tw.Flush()
			}

			if since > 0 {
				filter.Since = time.Now().Add(-since)
			}
			records, err := store.Query(filter)
			if err != nil {
				return err
			}
			if format != "table" {
				return export.Write(out, format, records)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tMODEL\tOUTCOME\tRESULT\tLATENCY")
			for _, r := range records {
				result := r.Message
				if r.Outcome == "success" {
					result = r.Species + " " + strconv.FormatFloat(r.Confidence, 'f', 2, 64) + "%"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1fms\n",
					r.Time.Local().Format(time.DateTime), r.Model, r.Outcome, result, r.LatencyMS)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&dbPath, "db", "", "sqlite database (defaults to the sqlite sink path)")
	f.StringVarP(&format, "format", "f", "table", "output format: table, csv or json")
	f.StringVar(&filter.Model, "model", "", "only show this model")
	f.StringVar(&filter.Outcome, "outcome", "", "only show this outcome (success, request_error)")
	f.IntVarP(&filter.Limit, "limit", "n", 20, "maximum rows, 0 for all")
	f.DurationVar(&since, "since", 0, "only show submissions newer than this")
	f.BoolVar(&summary, "summary", false, "aggregate per model and outcome")
	return cmd
}
