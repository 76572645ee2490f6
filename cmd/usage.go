package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	usagerender "github.com/bnema/codelynx/internal/adapters/render/usage"
	"github.com/bnema/codelynx/internal/application"
	"github.com/spf13/cobra"
)

func newUsageCmd(app *app) *cobra.Command {
	var asJSON bool
	var compact bool

	cmd := &cobra.Command{
		Use:     "usage",
		Aliases: []string{"stats"},
		Short:   "Show API request and token usage",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := app.service.UsageStats(cmd.Context())
			if err != nil {
				return err
			}

			return writeUsage(cmd, app, stats, asJSON, compact)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&compact, "compact", false, "Hide the model distribution table")

	cmd.AddCommand(
		newUsageResetCmd(app),
		newUsageExportCmd(app),
	)

	return cmd
}

func newUsageResetCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset today's request counter; lifetime totals are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := app.service.ResetDailyStats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Daily usage reset (%d/%d requests today).\n", stats.Stats.DailyRequests, stats.Config.APIDailyLimit)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newUsageExportCmd(app *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export usage statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exported, err := app.service.ExportStats(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), exported.Data)
				return err
			}

			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}
			if err := os.WriteFile(output, []byte(exported.Data+"\n"), 0o644); err != nil {
				return fmt.Errorf("write usage export: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Usage statistics exported to %s\n", output)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func writeUsage(cmd *cobra.Command, app *app, stats application.UsageStats, asJSON bool, compact bool) error {
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), stats)
	}

	rendered, err := app.usageRenderer(stats, usagerender.RenderOptions{Compact: compact})
	if err != nil {
		return fmt.Errorf("render usage: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
