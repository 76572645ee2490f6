package application

import "github.com/bnema/codelynx/internal/domain"

// CommandName is the inbound `command` discriminator of the bridge protocol.
type CommandName string

const (
	CommandSendChatMessage     CommandName = "sendChatMessage"
	CommandClearChatHistory    CommandName = "clearChatHistory"
	CommandGetAvailableModels  CommandName = "getAvailableModels"
	CommandCheckAPIKey         CommandName = "checkApiKey"
	CommandUpdateAPIKey        CommandName = "updateApiKey"
	CommandGenerateTests       CommandName = "generateTests"
	CommandScanVulnerabilities CommandName = "scanVulnerabilities"
	CommandRefreshData         CommandName = "refreshData"
	CommandResetDailyStats     CommandName = "resetDailyStats"
	CommandExportStats         CommandName = "exportStats"
	CommandExplainCode         CommandName = "explainCode"
	CommandReviewCode          CommandName = "reviewCode"
	CommandImproveCode         CommandName = "improveCode"
	CommandGetWorkspaceFiles   CommandName = "getWorkspaceFiles"
	CommandReadFile            CommandName = "readFile"
	CommandGetConfiguration    CommandName = "getConfiguration"
)

type SendChatMessageCommand struct {
	Message       string `json:"message"`
	SelectedModel string `json:"selectedModel,omitempty"`
	// ConversationHistory, when present, replaces the session history for this turn.
	ConversationHistory []domain.Turn `json:"conversationHistory,omitempty"`
}

// CodeActionKind selects the explain, review or improve prompt.
type CodeActionKind string

const (
	CodeActionExplain CodeActionKind = "explain"
	CodeActionReview  CodeActionKind = "review"
	CodeActionImprove CodeActionKind = "improve"
)

type CodeActionCommand struct {
	Kind          CodeActionKind `json:"-"`
	CodeContent   string         `json:"codeContent"`
	FileName      string         `json:"fileName"`
	SelectedModel string         `json:"selectedModel,omitempty"`
}

type GenerateTestsCommand struct {
	CodeContent   string          `json:"codeContent"`
	FileName      string          `json:"fileName"`
	TestType      domain.TestType `json:"testType"`
	SelectedModel string          `json:"selectedModel,omitempty"`
}

type ScanVulnerabilitiesCommand struct {
	CodeContent   string `json:"codeContent"`
	FileName      string `json:"fileName"`
	SelectedModel string `json:"selectedModel,omitempty"`
}

type UpdateAPIKeyCommand struct {
	APIKey string `json:"apiKey"`
}

type ReadFileCommand struct {
	FileName string `json:"fileName"`
}
