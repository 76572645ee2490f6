package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
	"github.com/charmbracelet/log"
)

var errNoWorkspace = errors.New("no workspace folder open")

// Service is the inbound command surface shared by the CLI and the stdio bridge.
type Service struct {
	settings    ports.SettingsSource
	workspace   ports.Workspace
	credentials *CredentialProvider
	ledger      *UsageLedger
	classifier  *ErrorClassifier
	dispatcher  *ChatDispatcher
	tools       ToolRequestBuilder
	logger      *log.Logger
}

type Option func(*serviceOptions)

type serviceOptions struct {
	clock     ports.Clock
	logger    *log.Logger
	workspace ports.Workspace
	lookupEnv func(string) (string, bool)
}

func WithClock(clock ports.Clock) Option {
	return func(o *serviceOptions) { o.clock = clock }
}

func WithLogger(logger *log.Logger) Option {
	return func(o *serviceOptions) { o.logger = logger }
}

func WithWorkspace(workspace ports.Workspace) Option {
	return func(o *serviceOptions) { o.workspace = workspace }
}

// WithEnvLookup replaces os.LookupEnv for the environment credential source.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(o *serviceOptions) { o.lookupEnv = lookup }
}

func NewService(settings ports.SettingsSource, store ports.SecretStore, usage ports.UsageRepository, factory ports.ClientFactory, opts ...Option) *Service {
	options := serviceOptions{
		clock:     ports.SystemClock{},
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(&options)
	}
	logger := orDiscard(options.logger)

	credentials := NewCredentialProvider(store, settings, factory, logger)
	credentials.lookupEnv = options.lookupEnv
	ledger := NewUsageLedger(usage, options.clock, logger)
	classifier := NewErrorClassifier(options.clock)

	return &Service{
		settings:    settings,
		workspace:   options.workspace,
		credentials: credentials,
		ledger:      ledger,
		classifier:  classifier,
		dispatcher:  NewChatDispatcher(settings, credentials, ledger, classifier, logger),
		logger:      logger,
	}
}

func (s *Service) NewSession() *Session {
	session := NewSession()
	s.logger.Debug("session opened", "session", session.ID())
	return session
}

// Classify exposes the error taxonomy to callers outside a chat turn.
func (s *Service) Classify(err error) domain.ClassifiedError {
	return s.classifier.Classify(err)
}

func (s *Service) SendChatMessage(ctx context.Context, session *Session, cmd SendChatMessageCommand) ChatResponse {
	result := s.dispatcher.HandleTurn(ctx, session, TurnRequest{
		Message: cmd.Message,
		Model:   cmd.SelectedModel,
		History: cmd.ConversationHistory,
		Profile: ChatProfile,
	})

	return chatResponse(result, cmd.Message)
}

func (s *Service) CodeAction(ctx context.Context, session *Session, cmd CodeActionCommand) ChatResponse {
	var (
		request TurnRequest
		err     error
	)
	switch cmd.Kind {
	case CodeActionExplain:
		request, err = s.tools.Explain(cmd.FileName, cmd.CodeContent)
	case CodeActionReview:
		request, err = s.tools.Review(cmd.FileName, cmd.CodeContent)
	case CodeActionImprove:
		request, err = s.tools.Improve(cmd.FileName, cmd.CodeContent)
	default:
		err = &domain.AnalysisError{Reason: fmt.Sprintf("unsupported code action %q", cmd.Kind)}
	}
	if err != nil {
		return chatResponse(s.rejected(err), "")
	}

	request.Model = cmd.SelectedModel
	return chatResponse(s.dispatcher.HandleTurn(ctx, session, request), request.Message)
}

func (s *Service) ClearChatHistory(session *Session) ChatCleared {
	session.History().Clear()
	return ChatCleared{Command: "chatCleared", Status: StatusSuccess}
}

func (s *Service) AvailableModels() AvailableModels {
	return AvailableModels{Command: "availableModels", Models: domain.AvailableModels()}
}

func (s *Service) CheckAPIKey(ctx context.Context) APIKeyStatus {
	status := s.credentials.Check(ctx)

	message := "API key configured"
	switch status {
	case domain.CredentialMissing:
		message = "API key not configured"
	case domain.CredentialInvalid:
		message = "Invalid API key"
	}

	return APIKeyStatus{Command: "apiKeyStatus", Status: status, Message: message}
}

// UpdateAPIKey stores a validated key and reports the re-checked status.
func (s *Service) UpdateAPIKey(ctx context.Context, cmd UpdateAPIKeyCommand) (ConfigUpdated, APIKeyStatus) {
	if _, err := s.credentials.Update(ctx, cmd.APIKey); err != nil {
		s.logger.Error("update api key failed", "err", err)
		classified := s.classifier.Classify(err)
		return ConfigUpdated{
			Command: "configUpdated",
			Status:  StatusError,
			Message: "Failed to update API key: " + classified.Message,
		}, s.CheckAPIKey(ctx)
	}

	return ConfigUpdated{
		Command: "configUpdated",
		Status:  StatusSuccess,
		Message: "API key updated successfully",
	}, s.CheckAPIKey(ctx)
}

func (s *Service) ClearAPIKey(ctx context.Context) (ConfigUpdated, APIKeyStatus) {
	if _, err := s.credentials.Clear(ctx); err != nil {
		s.logger.Error("clear api key failed", "err", err)
		return ConfigUpdated{
			Command: "configUpdated",
			Status:  StatusError,
			Message: "Failed to remove API key: " + s.classifier.Classify(err).Message,
		}, s.CheckAPIKey(ctx)
	}

	return ConfigUpdated{
		Command: "configUpdated",
		Status:  StatusSuccess,
		Message: "Stored API key removed",
	}, s.CheckAPIKey(ctx)
}

func (s *Service) GenerateTests(ctx context.Context, session *Session, cmd GenerateTestsCommand) TestGenerationResponse {
	response := TestGenerationResponse{Command: "testGenerationResponse", TestType: cmd.TestType}

	request, err := s.tools.GenerateTests(cmd.FileName, cmd.CodeContent, cmd.TestType)
	if err != nil {
		response.Status = StatusError
		response.Error = s.rejected(err).Error
		return response
	}
	request.Model = cmd.SelectedModel

	result := s.dispatcher.HandleTurn(ctx, session, request)
	if !result.Succeeded() {
		response.Status = StatusError
		response.Error = result.Error
		return response
	}

	response.Status = StatusSuccess
	response.TestCode = result.Text
	return response
}

func (s *Service) ScanVulnerabilities(ctx context.Context, session *Session, cmd ScanVulnerabilitiesCommand) VulnerabilityScanResponse {
	response := VulnerabilityScanResponse{Command: "vulnerabilityScanResponse"}

	request, err := s.tools.ScanVulnerabilities(cmd.FileName, cmd.CodeContent)
	if err != nil {
		response.Status = StatusError
		response.Error = s.rejected(err).Error
		return response
	}
	request.Model = cmd.SelectedModel

	result := s.dispatcher.HandleTurn(ctx, session, request)
	if !result.Succeeded() {
		response.Status = StatusError
		response.Error = result.Error
		return response
	}

	response.Status = StatusSuccess
	response.ScanResult = result.Text
	return response
}

func (s *Service) UsageStats(ctx context.Context) (UsageStats, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return UsageStats{}, fmt.Errorf("load settings: %w", err)
	}

	record, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return UsageStats{}, err
	}

	return UsageStats{
		Command: "usageStats",
		Stats:   record,
		Config:  QuotaView{APIDailyLimit: settings.Quota().DailyLimit},
	}, nil
}

func (s *Service) ResetDailyStats(ctx context.Context) (UsageStats, error) {
	if err := s.ledger.ResetDaily(ctx); err != nil {
		return UsageStats{}, err
	}

	return s.UsageStats(ctx)
}

func (s *Service) ExportStats(ctx context.Context) (ExportedStats, error) {
	payload, err := s.ledger.Serialize(ctx)
	if err != nil {
		return ExportedStats{}, err
	}

	return ExportedStats{Command: "exportedStats", Status: StatusSuccess, Data: string(payload)}, nil
}

func (s *Service) Configuration(ctx context.Context) (Configuration, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return Configuration{}, fmt.Errorf("load settings: %w", err)
	}

	return Configuration{
		Command: "configuration",
		Config: ConfigurationView{
			APIDailyLimit:   settings.Quota().DailyLimit,
			ChatModel:       settings.Model(""),
			ChatTemperature: ChatProfile.Temperature(settings),
			ProviderBaseURL: settings.ProviderBaseURL,
		},
	}, nil
}

func (s *Service) WorkspaceFiles(ctx context.Context) WorkspaceFiles {
	response := WorkspaceFiles{Command: "workspaceFiles", Files: []ports.WorkspaceFile{}}
	if s.workspace == nil {
		response.Error = "No workspace folder open"
		return response
	}

	files, err := s.workspace.ListFiles(ctx)
	if err != nil {
		s.logger.Warn("list workspace files failed", "err", err)
		response.Error = err.Error()
		return response
	}

	response.Files = files
	return response
}

func (s *Service) ReadFile(ctx context.Context, cmd ReadFileCommand) FileContentMessage {
	response := FileContentMessage{Command: "fileContent", FileName: cmd.FileName}
	if s.workspace == nil {
		response.Error = (&domain.WorkspaceError{Op: "read file", Path: cmd.FileName, Err: errNoWorkspace}).Error()
		return response
	}

	content, err := s.workspace.ReadFile(ctx, cmd.FileName)
	if err != nil {
		s.logger.Warn("read workspace file failed", "file", cmd.FileName, "err", err)
		response.Error = err.Error()
		return response
	}

	response.Content = content.Content
	response.Language = content.Language
	return response
}

// rejected classifies a request that failed before reaching the dispatcher.
func (s *Service) rejected(err error) TurnResult {
	return s.dispatcher.fail(TurnResult{State: StateIdle, Trace: []TurnState{StateIdle}}, err)
}

func chatResponse(result TurnResult, userMessage string) ChatResponse {
	if !result.Succeeded() {
		return ChatResponse{
			Command: "chatResponse",
			Status:  StatusError,
			Message: result.Error.Message,
			Error:   result.Error,
		}
	}

	return ChatResponse{
		Command:     "chatResponse",
		Status:      StatusSuccess,
		Message:     result.Text,
		UserMessage: userMessage,
		Model:       result.Model,
		Dropped:     result.Dropped,
	}
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.New(io.Discard)
}
