package ports

import (
	"context"

	"github.com/bnema/codelynx/internal/domain"
)

type CompletionRequest struct {
	Model       string
	Messages    []domain.Turn
	MaxTokens   int
	Temperature float64
}

type CompletionUsage struct {
	PromptTokens     uint64
	CompletionTokens uint64
	// Reported is false when the provider response carried no usage block.
	Reported bool
}

type CompletionResponse struct {
	Model   string
	Content string
	Usage   CompletionUsage
}

// CompletionClient performs one non-streaming chat completion.
// Failures that reach the provider boundary are returned as *domain.ProviderFailure.
type CompletionClient interface {
	Complete(ctx context.Context, request CompletionRequest) (CompletionResponse, error)
}

// ClientFactory builds a stateless client handle for a credential without network I/O.
// A malformed key yields an error wrapping domain.ErrCredentialInvalid.
type ClientFactory interface {
	NewClient(credential domain.Credential, settings domain.Settings) (CompletionClient, error)
}
