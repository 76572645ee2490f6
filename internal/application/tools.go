package application

import (
	"fmt"
	"strings"

	"github.com/bnema/codelynx/internal/domain"
)

var testTypeGuidance = map[domain.TestType]string{
	domain.TestTypeUnit: "Cover each public function in isolation, including edge cases and error paths. " +
		"Replace external dependencies with fakes or mocks.",
	domain.TestTypeIntegration: "Exercise the interactions between components and with external systems such as " +
		"databases, files and HTTP APIs, with realistic setup and teardown.",
	domain.TestTypeSecurity: "Probe input validation, injection, authentication and authorization checks, and " +
		"unsafe handling of secrets or user data. Name each test after the weakness it targets.",
}

// ToolRequestBuilder turns code-focused actions into dispatcher requests.
type ToolRequestBuilder struct{}

func (ToolRequestBuilder) Explain(fileName, code string) (TurnRequest, error) {
	return codeChatRequest("Please explain this code from %s:", fileName, code)
}

func (ToolRequestBuilder) Review(fileName, code string) (TurnRequest, error) {
	return codeChatRequest(
		"Please review this code from %s and provide feedback on code quality, potential issues, and best practices:",
		fileName, code,
	)
}

func (ToolRequestBuilder) Improve(fileName, code string) (TurnRequest, error) {
	return codeChatRequest(
		"Please suggest improvements for this code from %s. Focus on performance, readability, maintainability, and best practices:",
		fileName, code,
	)
}

func (ToolRequestBuilder) GenerateTests(fileName, code string, testType domain.TestType) (TurnRequest, error) {
	if !testType.Valid() {
		return TurnRequest{}, &domain.AnalysisError{Reason: fmt.Sprintf("unsupported test type %q", testType)}
	}
	if err := requireCode(code); err != nil {
		return TurnRequest{}, err
	}

	message := fmt.Sprintf(
		"Generate comprehensive %s tests for this code from %s. %s\n\n%s",
		testType, displayName(fileName), testTypeGuidance[testType], fence(code),
	)
	return TurnRequest{Message: message, Profile: TestGenerationProfile}, nil
}

func (ToolRequestBuilder) ScanVulnerabilities(fileName, code string) (TurnRequest, error) {
	if err := requireCode(code); err != nil {
		return TurnRequest{}, err
	}

	message := fmt.Sprintf("Scan this code from %s for security vulnerabilities:\n\n%s", displayName(fileName), fence(code))
	return TurnRequest{Message: message, Profile: VulnerabilityScanProfile}, nil
}

func codeChatRequest(format, fileName, code string) (TurnRequest, error) {
	if err := requireCode(code); err != nil {
		return TurnRequest{}, err
	}

	message := fmt.Sprintf(format, displayName(fileName)) + "\n\n" + fence(code)
	return TurnRequest{Message: message, Profile: ChatProfile}, nil
}

func requireCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return &domain.AnalysisError{Reason: "no code provided"}
	}
	return nil
}

func displayName(fileName string) string {
	if name := strings.TrimSpace(fileName); name != "" {
		return name
	}
	return "the current file"
}

// fence wraps code verbatim, widening the fence when the code itself contains backtick runs.
func fence(code string) string {
	marker := "```"
	for strings.Contains(code, marker) {
		marker += "`"
	}

	return marker + "\n" + strings.TrimRight(code, "\n") + "\n" + marker
}
