package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bnema/codelynx/internal/application"
	"github.com/charmbracelet/log"
)

const (
	initialBufferBytes = 64 << 10
	// MaxMessageBytes bounds one inbound line; code payloads can be large.
	MaxMessageBytes = 8 << 20
)

// envelope peeks at the discriminator before the payload is decoded into its command struct.
type envelope struct {
	Command application.CommandName `json:"command"`
}

// Server speaks newline-delimited JSON: one inbound command per line, one or more outbound messages per command.
type Server struct {
	service *application.Service
	logger  *log.Logger
	// afterClose runs after a cancelled connection closes its session, before Serve waits for running commands.
	afterClose func()
}

func NewServer(service *application.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{service: service, logger: logger}
}

// Serve handles one connection as one chat session. Commands run concurrently; output lines never interleave.
// When r is exhausted, running commands finish and reply before the session is closed.
// When ctx ends, the session is closed first so replies still in flight are dropped.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	session := s.service.NewSession()
	out := &writer{enc: json.NewEncoder(w)}

	var wg sync.WaitGroup
	err := s.readLoop(ctx, session, r, out, &wg)

	if ctx.Err() != nil {
		session.Close()
		if s.afterClose != nil {
			s.afterClose()
		}
		wg.Wait()
	} else {
		wg.Wait()
		session.Close()
	}
	s.logger.Debug("bridge session closed", "session", session.ID())

	return err
}

func (s *Server) readLoop(ctx context.Context, session *application.Session, r io.Reader, out *writer, wg *sync.WaitGroup) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, initialBufferBytes), MaxMessageBytes)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read bridge input: %w", err)
					}
				default:
				}
				return nil
			}
			if len(strings.TrimSpace(string(line))) == 0 {
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				s.handle(ctx, session, line, out)
			}()
		}
	}
}

func (s *Server) handle(ctx context.Context, session *application.Session, line []byte, out *writer) {
	var head envelope
	if err := json.Unmarshal(line, &head); err != nil {
		s.logger.Warn("malformed bridge message", "err", err)
		out.send(s.logger, application.NewErrorMessage("Malformed message: "+err.Error()))
		return
	}

	s.logger.Debug("bridge command", "session", session.ID(), "command", head.Command)

	messages, err := s.dispatch(ctx, session, head.Command, line)
	if err != nil {
		s.logger.Warn("bridge command failed", "command", head.Command, "err", err)
		out.send(s.logger, application.NewErrorMessage(s.service.Classify(err).Message))
		return
	}

	for _, message := range messages {
		out.send(s.logger, message)
	}
}

func (s *Server) dispatch(ctx context.Context, session *application.Session, name application.CommandName, line []byte) ([]any, error) {
	switch name {
	case application.CommandSendChatMessage:
		var cmd application.SendChatMessageCommand
		if err := decode(line, &cmd); err != nil {
			return nil, err
		}
		return chatReply(s.service.SendChatMessage(ctx, session, cmd)), nil

	case application.CommandExplainCode, application.CommandReviewCode, application.CommandImproveCode:
		var cmd application.CodeActionCommand
		if err := decode(line, &cmd); err != nil {
			return nil, err
		}
		cmd.Kind = codeActionKind(name)
		return chatReply(s.service.CodeAction(ctx, session, cmd)), nil

	case application.CommandClearChatHistory:
		return []any{s.service.ClearChatHistory(session)}, nil

	case application.CommandGetAvailableModels:
		return []any{s.service.AvailableModels()}, nil

	case application.CommandCheckAPIKey:
		return []any{s.service.CheckAPIKey(ctx)}, nil

	case application.CommandUpdateAPIKey:
		var cmd application.UpdateAPIKeyCommand
		if err := decode(line, &cmd); err != nil {
			return nil, err
		}
		updated, status := s.service.UpdateAPIKey(ctx, cmd)
		return []any{updated, status}, nil

	case application.CommandGenerateTests:
		var cmd application.GenerateTestsCommand
		if err := decode(line, &cmd); err != nil {
			return nil, err
		}
		return []any{s.service.GenerateTests(ctx, session, cmd)}, nil

	case application.CommandScanVulnerabilities:
		var cmd application.ScanVulnerabilitiesCommand
		if err := decode(line, &cmd); err != nil {
			return nil, err
		}
		return []any{s.service.ScanVulnerabilities(ctx, session, cmd)}, nil

	case application.CommandRefreshData:
		stats, err := s.service.UsageStats(ctx)
		if err != nil {
			return nil, err
		}
		return []any{stats}, nil

	case application.CommandResetDailyStats:
		stats, err := s.service.ResetDailyStats(ctx)
		if err != nil {
			return nil, err
		}
		return []any{stats}, nil

	case application.CommandExportStats:
		exported, err := s.service.ExportStats(ctx)
		if err != nil {
			return nil, err
		}
		return []any{exported}, nil

	case application.CommandGetWorkspaceFiles:
		return []any{s.service.WorkspaceFiles(ctx)}, nil

	case application.CommandReadFile:
		var cmd application.ReadFileCommand
		if err := decode(line, &cmd); err != nil {
			return nil, err
		}
		return []any{s.service.ReadFile(ctx, cmd)}, nil

	case application.CommandGetConfiguration:
		configuration, err := s.service.Configuration(ctx)
		if err != nil {
			return nil, err
		}
		return []any{configuration}, nil

	case "":
		return []any{application.NewErrorMessage("Missing command")}, nil

	default:
		return []any{application.NewErrorMessage(fmt.Sprintf("Unknown command: %s", name))}, nil
	}
}

// chatReply suppresses replies that finished after the session closed.
func chatReply(response application.ChatResponse) []any {
	if response.Dropped {
		return nil
	}
	return []any{response}
}

func codeActionKind(name application.CommandName) application.CodeActionKind {
	switch name {
	case application.CommandReviewCode:
		return application.CodeActionReview
	case application.CommandImproveCode:
		return application.CodeActionImprove
	default:
		return application.CodeActionExplain
	}
}

func decode(line []byte, target any) error {
	if err := json.Unmarshal(line, target); err != nil {
		return fmt.Errorf("decode command payload: %w", err)
	}
	return nil
}

type writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (w *writer) send(logger *log.Logger, message any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(message); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		logger.Error("write bridge message", "err", err)
	}
}
