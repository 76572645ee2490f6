package cmd

import (
	"github.com/bnema/codelynx/internal/adapters/bridge"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor bridge as JSON lines over stdin and stdout",
		Long:  "serve reads one JSON command per line from stdin and writes JSON messages to stdout. One process is one chat session; closing stdin closes the session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.logger.Debug("bridge listening on stdio")
			return bridge.NewServer(app.service, app.logger).Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
