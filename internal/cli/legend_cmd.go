package cli

import (
	"fmt"

	"github.com/2beens/whoopgrid/internal/heatmap"

	"github.com/spf13/cobra"
)

func newLegendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legend",
		Short: "Print the colour bands of every metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, metric := range heatmap.Metrics {
				if _, err := fmt.Fprintf(out, "%s\n", metric.Label()); err != nil {
					return err
				}
				for _, entry := range heatmap.Legend(metric) {
					if _, err := fmt.Fprintf(out, "  %-5s %-8s e.g. %g%s\n", entry.Label, entry.Color, entry.Sample, metric.Unit()); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}
