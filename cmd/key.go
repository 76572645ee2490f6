package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/bnema/codelynx/internal/application"
	"github.com/bnema/codelynx/internal/domain"
	"github.com/spf13/cobra"
)

func newKeyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Cerebras API key",
	}

	cmd.AddCommand(
		newKeyCheckCmd(app),
		newKeySetCmd(app),
		newKeyClearCmd(app),
	)

	return cmd
}

func newKeyCheckCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether an API key is configured and well-formed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := app.service.CheckAPIKey(cmd.Context())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", status.Status, status.Message)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newKeySetCmd(app *app) *cobra.Command {
	var value string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store an API key in the secret store",
		Long:  "Store an API key in the pass password store, or under ~/.codelynx/secrets when pass is unavailable. Without --value or --stdin the key is read from the terminal without echo.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apiKey := value
			switch {
			case apiKey != "":
			case fromStdin || !app.interactive:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && strings.TrimSpace(line) == "" {
					return fmt.Errorf("read api key from stdin: %w", err)
				}
				apiKey = line
			default:
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Cerebras API key: ")
				read, err := app.readPassword()
				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				apiKey = read
			}

			updated, status := app.service.UpdateAPIKey(cmd.Context(), application.UpdateAPIKeyCommand{APIKey: apiKey})
			return writeKeyUpdate(cmd, updated, status)
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "API key value (visible in shell history; prefer the prompt or --stdin)")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the API key from the first line of stdin")

	return cmd
}

func newKeyClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			updated, status := app.service.ClearAPIKey(cmd.Context())
			return writeKeyUpdate(cmd, updated, status)
		},
	}
}

func writeKeyUpdate(cmd *cobra.Command, updated application.ConfigUpdated, status application.APIKeyStatus) error {
	if updated.Status == application.StatusError {
		return fmt.Errorf("%s", updated.Message)
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), updated.Message); err != nil {
		return err
	}
	if status.Status != domain.CredentialConfigured {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", status.Status, status.Message)
		return err
	}
	return nil
}
