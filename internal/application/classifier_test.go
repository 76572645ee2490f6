package application

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassifierTaxonomy(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCategory domain.ErrorCategory
		wantMessage  string
	}{
		{
			name:         "unauthorized",
			err:          domain.HTTPStatusFailure(401, ""),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: Authentication failed. Please check your API key.",
		},
		{
			name:         "forbidden",
			err:          domain.HTTPStatusFailure(403, ""),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: API key does not have permission to access this resource.",
		},
		{
			name:         "not found",
			err:          domain.HTTPStatusFailure(404, ""),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: API endpoint not found. The API may have changed.",
		},
		{
			name:         "rate limited with detail",
			err:          domain.HTTPStatusFailure(429, "Too many requests"),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: Rate limit exceeded. Please try again later. Details: Too many requests",
		},
		{
			name:         "server error",
			err:          domain.HTTPStatusFailure(503, ""),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: Server error. The AI service may be experiencing issues.",
		},
		{
			name:         "not implemented is a server error",
			err:          domain.HTTPStatusFailure(501, ""),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: Server error. The AI service may be experiencing issues.",
		},
		{
			name:         "overloaded is a server error",
			err:          domain.HTTPStatusFailure(529, "overloaded"),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: Server error. The AI service may be experiencing issues. Details: overloaded",
		},
		{
			name:         "status above 5xx",
			err:          domain.HTTPStatusFailure(600, ""),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: Request failed with status 600.",
		},
		{
			name:         "other status",
			err:          domain.HTTPStatusFailure(418, ""),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: Request failed with status 418.",
		},
		{
			name:         "network",
			err:          fmt.Errorf("complete: %w", domain.NetworkFailure(errors.New("connection refused"))),
			wantCategory: domain.CategoryAPI,
			wantMessage:  "API Error: No response received from API server. Check your internet connection.",
		},
		{
			name:         "credential missing",
			err:          domain.ErrCredentialMissing,
			wantCategory: domain.CategoryConfig,
			wantMessage:  "Please configure your Cerebras API key first.",
		},
		{
			name:         "credential invalid",
			err:          fmt.Errorf("%w: contains spaces", domain.ErrCredentialInvalid),
			wantCategory: domain.CategoryConfig,
			wantMessage:  "Invalid API key. Please check your configuration.",
		},
		{
			name:         "quota",
			err:          &domain.QuotaError{Used: 100, Limit: 100},
			wantCategory: domain.CategoryConfig,
			wantMessage:  "Daily API request limit reached (100/100). Try again tomorrow or raise api_daily_limit.",
		},
		{
			name:         "workspace",
			err:          &domain.WorkspaceError{Op: "read file", Path: "main.go", Err: errors.New("permission denied")},
			wantCategory: domain.CategoryWorkspace,
			wantMessage:  `Workspace Error: read file "main.go": permission denied`,
		},
		{
			name:         "analysis",
			err:          &domain.AnalysisError{Reason: "no code provided"},
			wantCategory: domain.CategoryAnalysis,
			wantMessage:  "Analysis Error: no code provided",
		},
		{
			name:         "malformed response",
			err:          domain.MalformedResponseFailure(errors.New("unexpected EOF")),
			wantCategory: domain.CategoryGeneral,
			wantMessage:  "An unexpected error occurred: decode provider response: unexpected EOF",
		},
		{
			name:         "cancelled",
			err:          context.Canceled,
			wantCategory: domain.CategoryGeneral,
			wantMessage:  "The request was cancelled.",
		},
		{
			name:         "unknown",
			err:          errors.New("boom"),
			wantCategory: domain.CategoryGeneral,
			wantMessage:  "An unexpected error occurred: boom",
		},
	}

	classifier := NewErrorClassifier(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classifier.Classify(tt.err)

			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.Equal(t, Troubleshooting(tt.wantCategory), got.Troubleshooting)
		})
	}
}

func TestErrorClassifierIsDeterministicApartFromIDAndTime(t *testing.T) {
	classifier := NewErrorClassifier(nil)
	err := domain.HTTPStatusFailure(401, "invalid key")

	first := classifier.Classify(err)
	second := classifier.Classify(err)

	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, first.Troubleshooting, second.Troubleshooting)
	assert.NotEqual(t, first.ErrorID, second.ErrorID)
}

func TestErrorClassifierIDAndTimestamp(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 123_000_000, time.FixedZone("CEST", 2*3600))
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(now).Once()

	got := NewErrorClassifier(clock).Classify(errors.New("boom"))

	assert.Regexp(t, regexp.MustCompile(`^CLYNX-\d{7}-[0-9a-f]{8}$`), got.ErrorID)
	assert.Equal(t, time.UTC, got.Timestamp.Location())
	assert.True(t, got.Timestamp.Equal(now))
}

func TestTroubleshootingIsBulleted(t *testing.T) {
	for _, category := range []domain.ErrorCategory{
		domain.CategoryAPI,
		domain.CategoryWorkspace,
		domain.CategoryAnalysis,
		domain.CategoryConfig,
		domain.CategoryGeneral,
	} {
		lines := strings.Split(Troubleshooting(category), "\n")
		require.NotEmpty(t, lines)
		for _, line := range lines {
			assert.True(t, strings.HasPrefix(line, "• "), "category %s line %q", category, line)
		}
	}

	assert.Equal(t, Troubleshooting(domain.CategoryGeneral), Troubleshooting("unknown"))
}
