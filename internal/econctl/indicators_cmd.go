package econctl

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"econdash/fetcher"
)

func newIndicatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indicators",
		Short: "列出支持的指标",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSERIES\tENDPOINT\tLABEL")
			for _, ind := range fetcher.Indicators() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ind.Key, ind.SeriesID, ind.Endpoint, ind.Label)
			}
			return tw.Flush()
		},
	}
}
