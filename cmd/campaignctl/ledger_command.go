package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Show session cost totals and projections",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := ctx.ensureCore()
			if err != nil {
				return err
			}
			summary := core.ledger.Summary()
			printer := message.NewPrinter(language.English)

			out := cmd.OutOrStdout()
			printer.Fprintf(out, "requests: %d text, %d image, %d cache reuses\n",
				summary.TextRequests, summary.ImageRequests, summary.CacheReuses)
			printer.Fprintf(out, "total cost:    $%.4f\n", summary.TotalCost)
			printer.Fprintf(out, "total savings: $%.4f\n", summary.TotalSavings)
			printer.Fprintf(out, "uptime: %s, projected monthly cost: $%.2f\n",
				summary.Uptime.Round(time.Second), summary.ProjectedMonthlyCost)

			if len(summary.Providers) == 0 {
				return nil
			}
			headers := []string{"Provider", "Requests", "Success", "Failures", "Rate", "Cost", "Savings", "Avg latency"}
			var rows [][]string
			for _, stats := range summary.Providers {
				rows = append(rows, []string{
					stats.Name,
					fmt.Sprintf("%d", stats.Requests),
					fmt.Sprintf("%d", stats.Successes),
					fmt.Sprintf("%d", stats.Failures),
					fmt.Sprintf("%.0f%%", stats.SuccessRate*100),
					printer.Sprintf("$%.4f", stats.Cost),
					printer.Sprintf("$%.4f", stats.Savings),
					stats.AvgLatency.Round(time.Millisecond).String(),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
				alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight,
			}))
			return nil
		},
	}
}
