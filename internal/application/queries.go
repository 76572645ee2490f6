package application

import (
	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
)

// Status values of outbound messages.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type APIKeyStatus struct {
	Command string                  `json:"command"`
	Status  domain.CredentialStatus `json:"status"`
	Message string                  `json:"message"`
}

type ConfigUpdated struct {
	Command string `json:"command"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Command     string                  `json:"command"`
	Status      string                  `json:"status"`
	Message     string                  `json:"message"`
	UserMessage string                  `json:"userMessage,omitempty"`
	Model       string                  `json:"model,omitempty"`
	Error       *domain.ClassifiedError `json:"error,omitempty"`
	// Dropped replies belong to a closed session and must not be delivered.
	Dropped bool `json:"-"`
}

type TestGenerationResponse struct {
	Command  string                  `json:"command"`
	Status   string                  `json:"status"`
	TestType domain.TestType         `json:"testType"`
	TestCode string                  `json:"testCode,omitempty"`
	Error    *domain.ClassifiedError `json:"error,omitempty"`
}

// VulnerabilityScanResponse carries the model's JSON verbatim in ScanResult.
type VulnerabilityScanResponse struct {
	Command    string                  `json:"command"`
	Status     string                  `json:"status"`
	ScanResult string                  `json:"scanResult,omitempty"`
	Error      *domain.ClassifiedError `json:"error,omitempty"`
}

type QuotaView struct {
	APIDailyLimit int `json:"apiDailyLimit"`
}

type UsageStats struct {
	Command string             `json:"command"`
	Stats   domain.UsageRecord `json:"stats"`
	Config  QuotaView          `json:"config"`
}

type AvailableModels struct {
	Command string             `json:"command"`
	Models  []domain.ModelInfo `json:"models"`
}

type ChatCleared struct {
	Command string `json:"command"`
	Status  string `json:"status"`
}

type ExportedStats struct {
	Command string `json:"command"`
	Status  string `json:"status"`
	Data    string `json:"data"`
}

type WorkspaceFiles struct {
	Command string                `json:"command"`
	Files   []ports.WorkspaceFile `json:"files"`
	Error   string                `json:"error,omitempty"`
}

type FileContentMessage struct {
	Command  string `json:"command"`
	FileName string `json:"fileName"`
	Content  string `json:"content,omitempty"`
	Language string `json:"language,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ConfigurationView struct {
	APIDailyLimit   int     `json:"apiDailyLimit"`
	ChatModel       string  `json:"chatModel"`
	ChatTemperature float64 `json:"chatTemperature"`
	ProviderBaseURL string  `json:"providerBaseUrl"`
}

type Configuration struct {
	Command string            `json:"command"`
	Config  ConfigurationView `json:"config"`
}

type ErrorMessage struct {
	Command string `json:"command"`
	Message string `json:"message"`
}

func NewErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Command: "error", Message: message}
}
