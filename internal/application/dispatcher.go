package application

import (
	"context"
	"strings"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
	"github.com/charmbracelet/log"
)

// EmptyReplyPlaceholder replaces a provider answer with no content.
const EmptyReplyPlaceholder = "Sorry, I could not generate a response."

type TurnState string

const (
	StateIdle         TurnState = "idle"
	StateQuotaChecked TurnState = "quota_checked"
	StateDispatched   TurnState = "dispatched"
	StateSucceeded    TurnState = "succeeded"
	StateFailed       TurnState = "failed"
)

type TurnRequest struct {
	Message string
	// Model overrides the configured chat model when non-empty.
	Model string
	// History, when non-nil, seeds the prompt and replaces the session history once the turn succeeds.
	History []domain.Turn
	Profile Profile
}

type TurnResult struct {
	State TurnState
	Trace []TurnState
	Text  string
	Model string
	Usage ports.CompletionUsage
	Error *domain.ClassifiedError
	// Dropped is set when the session closed while the provider call was in flight.
	Dropped bool
}

func (r TurnResult) Succeeded() bool {
	return r.State == StateSucceeded
}

// ChatDispatcher runs one turn: quota check, credential, provider call, usage record, history update.
type ChatDispatcher struct {
	settings    ports.SettingsSource
	credentials *CredentialProvider
	ledger      *UsageLedger
	classifier  *ErrorClassifier
	logger      *log.Logger
}

func NewChatDispatcher(settings ports.SettingsSource, credentials *CredentialProvider, ledger *UsageLedger, classifier *ErrorClassifier, logger *log.Logger) *ChatDispatcher {
	return &ChatDispatcher{
		settings:    settings,
		credentials: credentials,
		ledger:      ledger,
		classifier:  classifier,
		logger:      orDiscard(logger),
	}
}

// HandleTurn never returns a Go error; failures are classified into the result.
func (d *ChatDispatcher) HandleTurn(ctx context.Context, session *Session, request TurnRequest) TurnResult {
	result := TurnResult{State: StateIdle, Trace: []TurnState{StateIdle}}

	if strings.TrimSpace(request.Message) == "" {
		return d.fail(result, &domain.AnalysisError{Reason: "message is empty"})
	}
	if request.Profile.Name == "" {
		request.Profile = ChatProfile
	}

	// Stateless profiles never touch history, so they run beside a chat turn.
	if request.Profile.Stateless {
		if session.Closed() {
			return d.fail(result, domain.ErrSessionClosed)
		}
	} else {
		if err := session.begin(); err != nil {
			return d.fail(result, err)
		}
		defer session.end()
	}

	settings, err := d.settings.Load(ctx)
	if err != nil {
		return d.fail(result, err)
	}

	quota := settings.Quota()
	decision, err := d.ledger.Reserve(ctx, quota.DailyLimit)
	if err != nil {
		return d.fail(result, err)
	}
	if decision.Exceeded() {
		return d.fail(result, &domain.QuotaError{Used: decision.Used, Limit: decision.Limit})
	}
	defer d.ledger.Release()
	result = advance(result, StateQuotaChecked)

	credential, err := d.credentials.Resolve(ctx)
	if err != nil {
		return d.fail(result, err)
	}
	client, err := d.credentials.Validate(credential, settings)
	if err != nil {
		return d.fail(result, err)
	}

	// The prompt is built from a scratch store; the session history changes only on success.
	prompt := session.History()
	if request.Profile.Stateless || request.History != nil {
		prompt = NewConversationStore()
		if !request.Profile.Stateless {
			prompt.Replace(request.History)
		}
	}

	result.Model = settings.Model(request.Model)
	completion := ports.CompletionRequest{
		Model:       result.Model,
		Messages:    prompt.ToPromptMessages(request.Profile.SystemPrompt, request.Message),
		MaxTokens:   request.Profile.MaxTokens,
		Temperature: request.Profile.Temperature(settings),
	}
	result = advance(result, StateDispatched)

	d.logger.Info("dispatching turn",
		"session", session.ID(),
		"profile", request.Profile.Name,
		"model", completion.Model,
		"messages", len(completion.Messages),
		"key", credential.Fingerprint(),
	)

	response, err := client.Complete(ctx, completion)
	if err != nil {
		return d.fail(result, err)
	}

	result = advance(result, StateSucceeded)
	result.Usage = response.Usage
	result.Text = response.Content
	if strings.TrimSpace(result.Text) == "" {
		result.Text = EmptyReplyPlaceholder
	}

	// Usage is committed even when the caller has gone away; the provider already counted the call.
	if err := d.ledger.RecordRequest(context.WithoutCancel(ctx), result.Model, response.Usage.PromptTokens, response.Usage.CompletionTokens); err != nil {
		d.logger.Warn("record usage failed", "err", err)
	}

	if session.Closed() {
		result.Dropped = true
		d.logger.Debug("session closed mid-turn, dropping reply", "session", session.ID())
		return result
	}

	if !request.Profile.Stateless {
		history := session.History()
		if request.History != nil {
			history.Replace(request.History)
		}
		history.AppendExchange(request.Message, result.Text)
	}

	d.logger.Info("turn completed",
		"session", session.ID(),
		"model", result.Model,
		"prompt_tokens", response.Usage.PromptTokens,
		"completion_tokens", response.Usage.CompletionTokens,
	)
	return result
}

func (d *ChatDispatcher) fail(result TurnResult, err error) TurnResult {
	classified := d.classifier.Classify(err)
	result = advance(result, StateFailed)
	result.Error = &classified

	d.logger.Warn("turn failed", "category", classified.Category, "error_id", classified.ErrorID, "err", err)
	return result
}

func advance(result TurnResult, state TurnState) TurnResult {
	result.State = state
	result.Trace = append(result.Trace, state)
	return result
}
