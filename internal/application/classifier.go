package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
	"github.com/google/uuid"
)

const errorIDPrefix = "CLYNX"

var troubleshootingByCategory = map[domain.ErrorCategory][]string{
	domain.CategoryAPI: {
		"Check your API key with `codelynx key check`",
		"Verify your internet connection",
		"Try regenerating your API key at cloud.cerebras.ai",
		"Check if the service is experiencing downtime",
	},
	domain.CategoryWorkspace: {
		"Open a valid project folder",
		"Make sure you have read/write permissions",
		"Check if the project structure is valid",
	},
	domain.CategoryAnalysis: {
		"Check if your project has required files (go.mod, package.json, etc.)",
		"Try opening the root folder of your project",
		"Make sure your project follows standard conventions",
	},
	domain.CategoryConfig: {
		"Set your API key with `codelynx key set` or CEREBRAS_API_KEY",
		"Check ~/.codelynx/config.toml for invalid values",
		"Check environment variables",
	},
	domain.CategoryGeneral: {
		"Try the request again",
		"Run with --verbose for more details",
		"Make sure you're using the latest version",
	},
}

// Troubleshooting returns the bulleted hint list for a category.
func Troubleshooting(category domain.ErrorCategory) string {
	tips, ok := troubleshootingByCategory[category]
	if !ok {
		tips = troubleshootingByCategory[domain.CategoryGeneral]
	}

	return "• " + strings.Join(tips, "\n• ")
}

// ErrorClassifier maps internal failures to user-facing messages. Only the id and timestamp vary between calls.
type ErrorClassifier struct {
	clock ports.Clock
	newID func(time.Time) string
}

func NewErrorClassifier(clock ports.Clock) *ErrorClassifier {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ErrorClassifier{clock: clock, newID: newErrorID}
}

func (c *ErrorClassifier) Classify(err error) domain.ClassifiedError {
	category, message := categorize(err)
	now := c.clock.Now()

	return domain.ClassifiedError{
		Category:        category,
		Message:         message,
		ErrorID:         c.newID(now),
		Troubleshooting: Troubleshooting(category),
		Timestamp:       now.UTC(),
	}
}

func categorize(err error) (domain.ErrorCategory, string) {
	if err == nil {
		return domain.CategoryGeneral, "Unknown error occurred."
	}

	var quotaErr *domain.QuotaError
	var failure *domain.ProviderFailure
	var workspaceErr *domain.WorkspaceError
	var analysisErr *domain.AnalysisError

	switch {
	case errors.As(err, &quotaErr):
		return domain.CategoryConfig, fmt.Sprintf(
			"Daily API request limit reached (%d/%d). Try again tomorrow or raise api_daily_limit.",
			quotaErr.Used, quotaErr.Limit,
		)
	case errors.Is(err, domain.ErrQuotaExceeded):
		return domain.CategoryConfig, "Daily API request limit reached. Try again tomorrow or raise api_daily_limit."
	case errors.Is(err, domain.ErrCredentialMissing):
		return domain.CategoryConfig, "Please configure your Cerebras API key first."
	case errors.Is(err, domain.ErrCredentialInvalid):
		return domain.CategoryConfig, "Invalid API key. Please check your configuration."
	case errors.As(err, &failure):
		return providerMessage(failure)
	case errors.As(err, &workspaceErr):
		return domain.CategoryWorkspace, "Workspace Error: " + workspaceErr.Error()
	case errors.As(err, &analysisErr):
		return domain.CategoryAnalysis, "Analysis Error: " + analysisErr.Error()
	case errors.Is(err, domain.ErrTurnInFlight):
		return domain.CategoryGeneral, "A request is already in progress. Wait for it to finish and try again."
	case errors.Is(err, domain.ErrSessionClosed):
		return domain.CategoryGeneral, "The chat session was closed."
	case errors.Is(err, context.Canceled):
		return domain.CategoryGeneral, "The request was cancelled."
	default:
		return domain.CategoryGeneral, "An unexpected error occurred: " + err.Error()
	}
}

func providerMessage(failure *domain.ProviderFailure) (domain.ErrorCategory, string) {
	switch failure.Kind {
	case domain.FailureNetwork:
		return domain.CategoryAPI, "API Error: No response received from API server. Check your internet connection."
	case domain.FailureMalformedResponse:
		return domain.CategoryGeneral, "An unexpected error occurred: " + failure.Error()
	}

	message := "API Error: "
	switch failure.StatusCode {
	case http.StatusUnauthorized:
		message += "Authentication failed. Please check your API key."
	case http.StatusForbidden:
		message += "API key does not have permission to access this resource."
	case http.StatusNotFound:
		message += "API endpoint not found. The API may have changed."
	case http.StatusTooManyRequests:
		message += "Rate limit exceeded. Please try again later."
	default:
		if failure.StatusCode >= 500 && failure.StatusCode < 600 {
			message += "Server error. The AI service may be experiencing issues."
		} else {
			message += fmt.Sprintf("Request failed with status %d.", failure.StatusCode)
		}
	}

	if detail := strings.TrimSpace(failure.Detail); detail != "" {
		message += " Details: " + detail
	}

	return domain.CategoryAPI, message
}

func newErrorID(now time.Time) string {
	return fmt.Sprintf("%s-%07d-%s", errorIDPrefix, now.UnixMilli()%10_000_000, uuid.NewString()[:8])
}
