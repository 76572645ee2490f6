package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/codelynx/internal/application"
	"github.com/bnema/codelynx/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type codeAction struct {
	kind  application.CodeActionKind
	use   string
	short string
	label string
}

var (
	codeActionExplain = codeAction{kind: application.CodeActionExplain, use: "explain <file|->", short: "Explain what a file does", label: "Explaining code..."}
	codeActionReview  = codeAction{kind: application.CodeActionReview, use: "review <file|->", short: "Review a file for bugs and best practices", label: "Reviewing code..."}
	codeActionImprove = codeAction{kind: application.CodeActionImprove, use: "improve <file|->", short: "Suggest improvements for a file", label: "Looking for improvements..."}
)

func newAskCmd(app *app) *cobra.Command {
	var model string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Ask a one-shot question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			var response application.ChatResponse
			err := app.wait(cmd.Context(), cmd.ErrOrStderr(), "Waiting for the model...", func(ctx context.Context) error {
				response = app.service.SendChatMessage(ctx, app.service.NewSession(), application.SendChatMessageCommand{
					Message:       message,
					SelectedModel: model,
				})
				return nil
			})
			if err != nil {
				return err
			}

			return writeChatResponse(cmd, app, response, asJSON)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id (default: chat_model setting)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newCodeActionCmd(app *app, action codeAction) *cobra.Command {
	var model string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   action.use,
		Short: action.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName, content, err := readSubject(cmd, app, args[0])
			if err != nil {
				return err
			}

			var response application.ChatResponse
			err = app.wait(cmd.Context(), cmd.ErrOrStderr(), action.label, func(ctx context.Context) error {
				response = app.service.CodeAction(ctx, app.service.NewSession(), application.CodeActionCommand{
					Kind:          action.kind,
					CodeContent:   content,
					FileName:      fileName,
					SelectedModel: model,
				})
				return nil
			})
			if err != nil {
				return err
			}

			return writeChatResponse(cmd, app, response, asJSON)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id (default: chat_model setting)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newTestsCmd(app *app) *cobra.Command {
	var model string
	var testType string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tests <file|->",
		Short: "Generate unit, integration or security tests for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName, content, err := readSubject(cmd, app, args[0])
			if err != nil {
				return err
			}

			var response application.TestGenerationResponse
			err = app.wait(cmd.Context(), cmd.ErrOrStderr(), "Generating tests...", func(ctx context.Context) error {
				response = app.service.GenerateTests(ctx, app.service.NewSession(), application.GenerateTestsCommand{
					CodeContent:   content,
					FileName:      fileName,
					TestType:      domain.TestType(testType),
					SelectedModel: model,
				})
				return nil
			})
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
					return err
				}
			}
			if response.Status == application.StatusError {
				if asJSON {
					return &turnError{classified: *response.Error}
				}
				return failTurn(cmd, response.Error)
			}
			if asJSON {
				return nil
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(app.markdown().Render(response.TestCode), "\n"))
			return err
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id (default: chat_model setting)")
	cmd.Flags().StringVarP(&testType, "type", "t", string(domain.TestTypeUnit), "Test type: unit, integration or security")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

type scanReport struct {
	Summary         string `json:"summary"`
	RiskLevel       string `json:"riskLevel"`
	Vulnerabilities []struct {
		Type           string `json:"type"`
		Severity       string `json:"severity"`
		Line           int    `json:"line"`
		Description    string `json:"description"`
		Recommendation string `json:"recommendation"`
	} `json:"vulnerabilities"`
}

var severityStyles = map[string]lipgloss.Style{
	"critical": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	"high":     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	"medium":   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	"low":      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

func newScanCmd(app *app) *cobra.Command {
	var model string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan <file|->",
		Short: "Scan a file for security vulnerabilities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName, content, err := readSubject(cmd, app, args[0])
			if err != nil {
				return err
			}

			var response application.VulnerabilityScanResponse
			err = app.wait(cmd.Context(), cmd.ErrOrStderr(), "Scanning for vulnerabilities...", func(ctx context.Context) error {
				response = app.service.ScanVulnerabilities(ctx, app.service.NewSession(), application.ScanVulnerabilitiesCommand{
					CodeContent:   content,
					FileName:      fileName,
					SelectedModel: model,
				})
				return nil
			})
			if err != nil {
				return err
			}

			if response.Status == application.StatusError {
				if asJSON {
					_ = writeJSON(cmd.OutOrStdout(), response)
					return &turnError{classified: *response.Error}
				}
				return failTurn(cmd, response.Error)
			}
			if asJSON {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(response.ScanResult))
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderScan(response.ScanResult))
			return err
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id (default: chat_model setting)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the model's JSON report verbatim")

	return cmd
}

// renderScan formats the JSON report, or returns the raw text when the model did not follow the contract.
func renderScan(raw string) string {
	var report scanReport
	if err := json.Unmarshal([]byte(extractJSON(raw)), &report); err != nil {
		return strings.TrimSpace(raw)
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Risk level: " + strings.ToUpper(report.RiskLevel)),
		report.Summary,
	}
	if len(report.Vulnerabilities) == 0 {
		lines = append(lines, faintStyle.Render("No vulnerabilities reported."))
	}
	for _, vuln := range report.Vulnerabilities {
		style, ok := severityStyles[strings.ToLower(vuln.Severity)]
		if !ok {
			style = lipgloss.NewStyle()
		}
		lines = append(lines,
			"",
			style.Render(fmt.Sprintf("[%s] %s (line %d)", strings.ToUpper(vuln.Severity), vuln.Type, vuln.Line)),
			"  "+vuln.Description,
			faintStyle.Render("  fix: "+vuln.Recommendation),
		)
	}

	return strings.Join(lines, "\n")
}

// extractJSON strips a markdown fence around the report.
func extractJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end < start {
		return trimmed
	}
	return trimmed[start : end+1]
}
