package cerebras

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	chatCompletionsPath = "chat/completions"
	maxResponseBytes    = 10 << 20
	maxErrorBodyBytes   = 64 << 10
	userAgent           = "codelynx"
)

// Factory builds one Client per resolved credential; nothing is cached between calls.
type Factory struct {
	HTTPClient *http.Client
	Logger     *log.Logger
}

var _ ports.ClientFactory = Factory{}

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *log.Logger
	requestID  func() string
}

var _ ports.CompletionClient = (*Client)(nil)

func (f Factory) NewClient(credential domain.Credential, settings domain.Settings) (ports.CompletionClient, error) {
	if err := ValidateKey(credential.Value); err != nil {
		return nil, err
	}

	baseURL := strings.TrimSpace(settings.ProviderBaseURL)
	if baseURL == "" {
		baseURL = domain.DefaultProviderBaseURL
	}
	endpoint, err := buildAPIURL(baseURL, chatCompletionsPath)
	if err != nil {
		return nil, err
	}

	logger := f.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		apiKey:     credential.Value,
		endpoint:   endpoint,
		httpClient: f.httpClient(settings),
		logger:     logger,
		requestID:  uuid.NewString,
	}, nil
}

// ValidateKey rejects keys that cannot be sent as a bearer token.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", domain.ErrCredentialInvalid)
	}

	for _, r := range key {
		if r > unicode.MaxASCII || unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: contains whitespace, control or non-ASCII characters", domain.ErrCredentialInvalid)
		}
	}

	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatUsage struct {
	PromptTokens     uint64 `json:"prompt_tokens"`
	CompletionTokens uint64 `json:"completion_tokens"`
	TotalTokens      uint64 `json:"total_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage"`
}

type errorResponse struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func (c *Client) Complete(ctx context.Context, request ports.CompletionRequest) (ports.CompletionResponse, error) {
	messages := make([]chatMessage, 0, len(request.Messages))
	for _, turn := range request.Messages {
		messages = append(messages, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}

	body, err := json.Marshal(chatRequest{
		Model:       request.Model,
		Messages:    messages,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
		Stream:      false,
	})
	if err != nil {
		return ports.CompletionResponse{}, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.CompletionResponse{}, fmt.Errorf("create chat request: %w", err)
	}
	requestID := c.requestID()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("sending chat completion", "request_id", requestID, "model", request.Model, "messages", len(messages))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ports.CompletionResponse{}, ctxErr
		}
		return ports.CompletionResponse{}, domain.NetworkFailure(err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("chat completion answered", "request_id", requestID, "status", resp.StatusCode)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ports.CompletionResponse{}, domain.HTTPStatusFailure(resp.StatusCode, decodeErrorDetail(resp.Body))
	}

	var payload chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ports.CompletionResponse{}, ctxErr
		}
		return ports.CompletionResponse{}, domain.MalformedResponseFailure(err)
	}

	response := ports.CompletionResponse{Model: payload.Model}
	if response.Model == "" {
		response.Model = request.Model
	}
	if len(payload.Choices) > 0 {
		response.Content = payload.Choices[0].Message.Content
	}
	if payload.Usage != nil {
		response.Usage = ports.CompletionUsage{
			PromptTokens:     payload.Usage.PromptTokens,
			CompletionTokens: payload.Usage.CompletionTokens,
			Reported:         true,
		}
	}

	return response, nil
}

// decodeErrorDetail accepts {"message":...}, {"error":{"message":...}} and {"error":"..."} bodies.
func decodeErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}

	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}

	if len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return strings.TrimSpace(nested.Message)
		}
		var flat string
		if err := json.Unmarshal(payload.Error, &flat); err == nil && flat != "" {
			return strings.TrimSpace(flat)
		}
	}

	return strings.TrimSpace(payload.Message)
}

func (f Factory) httpClient(settings domain.Settings) *http.Client {
	base := f.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	if settings.ProviderTimeout <= 0 {
		return base
	}

	client := *base
	client.Timeout = settings.ProviderTimeout
	return &client
}

func buildAPIURL(baseURL string, path string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse provider base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("provider base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("provider base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse provider path: %w", err)
	}
	return endpoint.String(), nil
}
