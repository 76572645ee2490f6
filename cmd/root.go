package cmd

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "codelynx",
		Short:         "CodeLynx: chat with Cerebras-hosted models about your code",
		Long:          "codelynx is a terminal coding assistant backed by the Cerebras inference API. It chats, explains, reviews and improves code, generates tests, scans for vulnerabilities and tracks daily API usage.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if verbose {
			app.logger.SetLevel(log.DebugLevel)
		}
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newChatCmd(app),
		newAskCmd(app),
		newCodeActionCmd(app, codeActionExplain),
		newCodeActionCmd(app, codeActionReview),
		newCodeActionCmd(app, codeActionImprove),
		newTestsCmd(app),
		newScanCmd(app),
		newModelsCmd(app),
		newKeyCmd(app),
		newUsageCmd(app),
		newFilesCmd(app),
		newConfigCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
