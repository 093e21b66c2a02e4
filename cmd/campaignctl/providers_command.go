package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sciados/campaign-backend-sub004/internal/provider"
)

func newProvidersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured providers with health state",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := ctx.ensureCore()
			if err != nil {
				return err
			}

			now := time.Now()
			headers := []string{"Provider", "Capability", "Tier", "$/unit", "Quality", "State", "Requests", "Failures", "Strengths"}
			var rows [][]string
			for _, p := range core.registry.All() {
				snap := p.Snapshot(now)
				state := string(snap.State)
				switch snap.State {
				case provider.StateRateLimited:
					state = fmt.Sprintf("%s (%s)", state, time.Until(snap.RateLimitedUntil).Round(time.Second))
				case provider.StateDisabled:
					state = fmt.Sprintf("%s (%s)", state, time.Until(snap.DisabledUntil).Round(time.Second))
				}
				rows = append(rows, []string{
					snap.Name,
					string(snap.Capability),
					string(snap.Tier),
					fmt.Sprintf("%.4f", snap.CostPerUnit),
					fmt.Sprintf("%d", snap.QualityScore),
					state,
					fmt.Sprintf("%d", snap.TotalRequests),
					fmt.Sprintf("%d", snap.TotalFailures),
					strings.Join(snap.Strengths, ", "),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no providers enabled")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{
				alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight, alignRight, alignLeft,
			}))
			return nil
		},
	}
}
