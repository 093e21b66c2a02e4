package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sciados/campaign-backend-sub004/internal/intel"
	"github.com/sciados/campaign-backend-sub004/internal/ledger"
	"github.com/sciados/campaign-backend-sub004/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the intelligence cache",
	}
	cmd.AddCommand(newCacheLookupCommand(ctx))
	cmd.AddCommand(newCacheReferenceCommand(ctx))
	cmd.AddCommand(newCacheCleanupCommand(ctx))
	return cmd
}

func newCacheLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <url>",
		Short: "Look up a cached analysis by source URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			cache := intel.NewCache(store, ctx.cacheConfig(cfg), logger, nil)
			result, err := cache.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !result.Hit {
				fmt.Fprintln(cmd.OutOrStdout(), "miss")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hit entry=%d confidence=%.2f age=%s\n",
				result.Entry.ID, result.Confidence, time.Since(result.CreatedAt).Round(time.Hour))
			encoded, err := json.MarshalIndent(result.Analysis, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
}

func newCacheReferenceCommand(ctx *commandContext) *cobra.Command {
	var requester string
	cmd := &cobra.Command{
		Use:   "reference <url>",
		Short: "Reuse a cached analysis as a new attributed record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			cache := intel.NewCache(store, ctx.cacheConfig(cfg), logger, nil)
			result, err := cache.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !result.Hit {
				return fmt.Errorf("no qualifying cache entry for %s", args[0])
			}

			costs := ledger.New(nil)
			referencer := intel.NewReferencer(store, costs, cfg.Cache.BaselineAnalysisCost, logger, nil)
			refID, err := referencer.CreateReference(cmd.Context(), result.Entry, requester)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reference %s created (savings $%.2f)\n",
				refID, cfg.Cache.BaselineAnalysisCost)
			return nil
		},
	}
	cmd.Flags().StringVar(&requester, "requester", "", "User or campaign the reuse is attributed to")
	_ = cmd.MarkFlagRequired("requester")
	return cmd
}

func newCacheCleanupCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Evict stale, low-confidence, unreferenced cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			cleanup := intel.NewCleanup(store, ctx.cleanupConfig(cfg), logger, nil)

			if interval <= 0 {
				evicted, err := cleanup.Sweep(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "evicted %d entries\n", evicted)
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "sweeping every %s, ctrl-c to stop\n", interval)
			if err := cleanup.Run(runCtx, interval); err != nil && runCtx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Loop with a periodic sweep at this interval")
	return cmd
}
