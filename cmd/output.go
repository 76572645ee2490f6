package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/codelynx/internal/application"
	"github.com/bnema/codelynx/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	errorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	faintStyle      = lipgloss.NewStyle().Faint(true)
)

// turnError makes a failed turn exit non-zero while keeping the classified message as the error text.
type turnError struct {
	classified domain.ClassifiedError
}

func (e *turnError) Error() string {
	return fmt.Sprintf("%s (%s)", e.classified.Message, e.classified.ErrorID)
}

func failTurn(cmd *cobra.Command, classified *domain.ClassifiedError) error {
	if classified == nil {
		classified = &domain.ClassifiedError{Category: domain.CategoryGeneral, Message: "Unknown error occurred."}
	}

	w := cmd.ErrOrStderr()
	_, _ = fmt.Fprintln(w, errorTitleStyle.Render(string(classified.Category)+" error"))
	if tips := strings.TrimSpace(classified.Troubleshooting); tips != "" {
		_, _ = fmt.Fprintln(w, faintStyle.Render(tips))
	}

	return &turnError{classified: *classified}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeChatResponse(cmd *cobra.Command, app *app, response application.ChatResponse, asJSON bool) error {
	if asJSON {
		if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
			return err
		}
		if response.Status == application.StatusError {
			return &turnError{classified: *response.Error}
		}
		return nil
	}

	if response.Status == application.StatusError {
		return failTurn(cmd, response.Error)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(app.markdown().Render(response.Message), "\n"))
	return err
}

// readSubject loads code from the workspace, or from stdin when name is "-".
func readSubject(cmd *cobra.Command, app *app, name string) (fileName string, content string, err error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return "", string(data), nil
	}

	if filepath.IsAbs(name) {
		if cwd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(cwd, name); err == nil {
				name = rel
			}
		}
	}

	file := app.service.ReadFile(cmd.Context(), application.ReadFileCommand{FileName: name})
	if file.Error != "" {
		return "", "", fmt.Errorf("%s", file.Error)
	}

	return filepath.Base(name), file.Content, nil
}
