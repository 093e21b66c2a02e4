package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sciados/campaign-backend-sub004/internal/router"
)

const (
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate content through the cheapest healthy provider",
	}
	cmd.AddCommand(newGenerateTextCommand(ctx))
	cmd.AddCommand(newGenerateImageCommand(ctx))
	return cmd
}

func newGenerateTextCommand(ctx *commandContext) *cobra.Command {
	var (
		system      string
		maxTokens   int
		temperature float64
		strength    string
	)
	cmd := &cobra.Command{
		Use:   "text <prompt>",
		Short: "Generate text with cost-tiered failover",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := ctx.ensureCore()
			if err != nil {
				return err
			}
			result, err := core.router.GenerateText(cmd.Context(), routerTextOptions(args[0], system, maxTokens, temperature, strength))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Content)
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), costSummary(cmd, result.Provider, string(result.Tier), result.Cost, result.Savings, result.RequestID))
			return nil
		},
	}
	cmd.Flags().StringVar(&system, "system", "", "System message for the model")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 1000, "Completion token budget")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.7, "Sampling temperature")
	cmd.Flags().StringVar(&strength, "strength", "", "Require providers declaring this strength tag")
	return cmd
}

func newGenerateImageCommand(ctx *commandContext) *cobra.Command {
	var (
		platform string
		negative string
		style    string
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate an image with cost-tiered failover",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := ctx.ensureCore()
			if err != nil {
				return err
			}
			result, err := core.router.GenerateImage(cmd.Context(), routerImageOptions(args[0], platform, negative, style))
			if err != nil {
				return err
			}
			switch {
			case result.ImageB64 != "":
				data, err := base64.StdEncoding.DecodeString(result.ImageB64)
				if err != nil {
					return fmt.Errorf("decode image payload: %w", err)
				}
				if outPath == "" {
					outPath = "generated.png"
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write image: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outPath, len(data))
			case result.ImageURL != "":
				fmt.Fprintln(cmd.OutOrStdout(), result.ImageURL)
			default:
				return errors.New("provider returned no image payload")
			}
			fmt.Fprintln(cmd.OutOrStdout(), costSummary(cmd, result.Provider, string(result.Tier), result.Cost, result.Savings, result.RequestID))
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "Target platform hint (instagram, story, banner, ...)")
	cmd.Flags().StringVar(&negative, "negative", "", "Negative prompt")
	cmd.Flags().StringVar(&style, "style", "", "Style hint")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file for the image payload")
	return cmd
}

func costSummary(cmd *cobra.Command, providerName, tier string, cost, savings float64, requestID string) string {
	summary := fmt.Sprintf("provider=%s tier=%s cost=$%.4f savings=$%.4f request=%s",
		providerName, tier, cost, savings, requestID)
	if isTerminal(cmd.OutOrStdout()) {
		return ansiGreen + summary + ansiReset
	}
	return summary
}

func routerTextOptions(prompt, system string, maxTokens int, temperature float64, strength string) router.TextOptions {
	return router.TextOptions{
		Prompt:           strings.TrimSpace(prompt),
		SystemMessage:    system,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		RequiredStrength: strength,
	}
}

func routerImageOptions(prompt, platform, negative, style string) router.ImageOptions {
	return router.ImageOptions{
		Prompt:         strings.TrimSpace(prompt),
		Platform:       platform,
		NegativePrompt: negative,
		Style:          style,
	}
}
