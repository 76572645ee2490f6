package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	usagerender "github.com/bnema/codelynx/internal/adapters/render/usage"
	"github.com/bnema/codelynx/internal/application"
	"github.com/bnema/codelynx/internal/domain"
	"github.com/charmbracelet/log"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const chatPrompt = "you> "

var errChatExit = errors.New("chat exit")

var chatSlashCommands = []string{"/clear", "/exit", "/explain", "/help", "/improve", "/model", "/models", "/quit", "/review", "/usage"}

const chatHelp = `Commands:
  /model [id]       show or switch the model for this session
  /models           list available models
  /explain <file>   explain a workspace file
  /review <file>    review a workspace file
  /improve <file>   suggest improvements for a workspace file
  /usage            show today's API usage
  /clear            forget the conversation so far
  /exit             leave the chat`

type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

type chatLoop struct {
	app     *app
	cmd     *cobra.Command
	session *application.Session
	model   string
}

func newChatCmd(app *app) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := app.newLineReader(cmd.InOrStdin())
			defer func() {
				if err := reader.Close(); err != nil {
					app.logger.Debug("close line reader", "err", err)
				}
			}()

			loop := &chatLoop{app: app, cmd: cmd, session: app.service.NewSession(), model: model}
			defer loop.session.Close()

			if app.interactive {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), faintStyle.Render("CodeLynx chat. Type /help for commands, /exit to leave."))
			}

			return loop.run(cmd.Context(), reader)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id (default: chat_model setting)")

	return cmd
}

func (l *chatLoop) run(ctx context.Context, reader lineReader) error {
	prompt := ""
	if l.app.interactive {
		prompt = chatPrompt
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		input, err := reader.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		reader.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if err := l.slash(ctx, input); err != nil {
				if errors.Is(err, errChatExit) {
					return nil
				}
				_, _ = fmt.Fprintln(l.cmd.ErrOrStderr(), errorTitleStyle.Render(err.Error()))
			}
			continue
		}

		l.send(ctx, input)
	}
}

func (l *chatLoop) send(ctx context.Context, message string) {
	var response application.ChatResponse
	_ = l.app.wait(ctx, l.cmd.ErrOrStderr(), "Waiting for the model...", func(ctx context.Context) error {
		response = l.app.service.SendChatMessage(ctx, l.session, application.SendChatMessageCommand{
			Message:       message,
			SelectedModel: l.model,
		})
		return nil
	})
	l.print(response)
}

func (l *chatLoop) print(response application.ChatResponse) {
	if response.Dropped {
		return
	}
	if response.Status == application.StatusError {
		classified := response.Error
		if classified == nil {
			classified = &domain.ClassifiedError{Message: "Unknown error occurred."}
		}
		w := l.cmd.ErrOrStderr()
		_, _ = fmt.Fprintln(w, errorTitleStyle.Render((&turnError{classified: *classified}).Error()))
		if tips := strings.TrimSpace(classified.Troubleshooting); tips != "" {
			_, _ = fmt.Fprintln(w, faintStyle.Render(tips))
		}
		return
	}

	_, _ = fmt.Fprintln(l.cmd.OutOrStdout(), strings.TrimRight(l.app.markdown().Render(response.Message), "\n"))
}

func (l *chatLoop) slash(ctx context.Context, input string) error {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	out := l.cmd.OutOrStdout()

	switch name {
	case "/exit", "/quit":
		return errChatExit

	case "/help":
		_, err := fmt.Fprintln(out, chatHelp)
		return err

	case "/clear":
		l.app.service.ClearChatHistory(l.session)
		_, err := fmt.Fprintln(out, "Chat history cleared.")
		return err

	case "/model":
		if arg == "" {
			current := l.model
			if current == "" {
				configuration, err := l.app.service.Configuration(ctx)
				if err != nil {
					return err
				}
				current = configuration.Config.ChatModel
			}
			_, err := fmt.Fprintf(out, "Current model: %s\n", current)
			return err
		}
		l.model = arg
		_, err := fmt.Fprintf(out, "Switched to %s.\n", arg)
		return err

	case "/models":
		for _, model := range l.app.service.AvailableModels().Models {
			if _, err := fmt.Fprintf(out, "%-16s %s\n", model.ID, model.Description); err != nil {
				return err
			}
		}
		return nil

	case "/usage":
		stats, err := l.app.service.UsageStats(ctx)
		if err != nil {
			return err
		}
		rendered, err := l.app.usageRenderer(stats, usagerender.RenderOptions{Compact: true})
		if err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		_, err = fmt.Fprintln(out, rendered)
		return err

	case "/explain", "/review", "/improve":
		if arg == "" {
			return fmt.Errorf("usage: %s <file>", name)
		}
		fileName, content, err := readSubject(l.cmd, l.app, arg)
		if err != nil {
			return err
		}

		var response application.ChatResponse
		_ = l.app.wait(ctx, l.cmd.ErrOrStderr(), "Waiting for the model...", func(ctx context.Context) error {
			response = l.app.service.CodeAction(ctx, l.session, application.CodeActionCommand{
				Kind:          application.CodeActionKind(strings.TrimPrefix(name, "/")),
				CodeContent:   content,
				FileName:      fileName,
				SelectedModel: l.model,
			})
			return nil
		})
		l.print(response)
		return nil

	default:
		return fmt.Errorf("unknown command %s, type /help", name)
	}
}

func (a *app) newLineReader(in io.Reader) lineReader {
	if !a.interactive {
		return newScanReader(in)
	}

	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(completeSlash)

	reader := &linerReader{state: state, historyPath: a.historyPath(), logger: a.logger}
	reader.loadHistory()
	return reader
}

func completeSlash(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}

	var matches []string
	for _, command := range chatSlashCommands {
		if strings.HasPrefix(command, line) {
			matches = append(matches, command)
		}
	}
	for _, model := range domain.AvailableModels() {
		if candidate := "/model " + model.ID; strings.HasPrefix(candidate, line) && line != "/" {
			matches = append(matches, candidate)
		}
	}
	sort.Strings(matches)
	return matches
}

type linerReader struct {
	state       *liner.State
	historyPath string
	logger      *log.Logger
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	return r.state.Prompt(prompt)
}

func (r *linerReader) AppendHistory(line string) {
	r.state.AppendHistory(line)
}

func (r *linerReader) loadHistory() {
	file, err := os.Open(r.historyPath)
	if err != nil {
		return
	}
	defer file.Close()

	if _, err := r.state.ReadHistory(file); err != nil {
		r.logger.Debug("read chat history", "err", err)
	}
}

func (r *linerReader) Close() error {
	if err := os.MkdirAll(filepath.Dir(r.historyPath), 0o700); err == nil {
		if file, err := os.OpenFile(r.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			if _, err := r.state.WriteHistory(file); err != nil {
				r.logger.Debug("write chat history", "err", err)
			}
			_ = file.Close()
		}
	}

	return r.state.Close()
}

type scanReader struct {
	scanner *bufio.Scanner
}

func newScanReader(in io.Reader) *scanReader {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return &scanReader{scanner: scanner}
}

func (r *scanReader) Prompt(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Close() error {
	return nil
}
