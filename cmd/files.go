package cmd

import (
	"fmt"

	"github.com/bnema/codelynx/internal/application"
	"github.com/spf13/cobra"
)

func newFilesCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List source files in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listing := app.service.WorkspaceFiles(cmd.Context())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), listing)
			}
			if listing.Error != "" {
				return fmt.Errorf("%s", listing.Error)
			}

			for _, file := range listing.Files {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), file.RelativePath); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.AddCommand(newFilesShowCmd(app))

	return cmd
}

func newFilesShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a workspace file with its detected language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := app.service.ReadFile(cmd.Context(), application.ReadFileCommand{FileName: args[0]})
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), content)
			}
			if content.Error != "" {
				return fmt.Errorf("%s", content.Error)
			}

			_, err := fmt.Fprint(cmd.OutOrStdout(), content.Content)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newModelsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			models := app.service.AvailableModels()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models)
			}

			configuration, err := app.service.Configuration(cmd.Context())
			if err != nil {
				return err
			}

			for _, model := range models.Models {
				marker := " "
				if model.ID == configuration.Config.ChatModel {
					marker = "*"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %-18s %s\n", marker, model.ID, model.Name, model.Description); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newConfigCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configuration, err := app.service.Configuration(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), configuration)
			}

			active := app.settings.Viper().ConfigFileUsed()
			if active == "" {
				active = "(none, using defaults)"
			}

			view := configuration.Config
			rows := [][2]string{
				{"config file", active},
				{"api_daily_limit", fmt.Sprintf("%d", view.APIDailyLimit)},
				{"chat_model", view.ChatModel},
				{"chat_temperature", fmt.Sprintf("%.2f", view.ChatTemperature)},
				{"provider.base_url", view.ProviderBaseURL},
			}
			for _, row := range rows {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", row[0]+":", row[1]); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
