package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the selectable models",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDEFAULT")
			for _, m := range c.cfg.Form.Models {
				def := ""
				if m.ID == c.cfg.Form.DefaultModel {
					def = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Name, def)
			}
			return tw.Flush()
		},
	}
}
