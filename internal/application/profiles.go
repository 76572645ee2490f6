package application

import "github.com/bnema/codelynx/internal/domain"

const chatSystemPrompt = "You are CodeLynx, an AI assistant specialized in helping developers with code review, " +
	"explanation, debugging, and improvement suggestions. You are knowledgeable about multiple programming " +
	"languages, frameworks, and best practices. Always provide clear, helpful, and actionable advice."

const testSystemPrompt = "You are CodeLynx, an expert software test engineer. You write complete, runnable tests " +
	"that follow the conventions of the code's language and its standard testing tools. " +
	"Return the test code in a single fenced code block followed by a short note on what is covered."

const scanSystemPrompt = `You are CodeLynx, a security auditor. Analyze the code you are given for security vulnerabilities.
Respond with a single JSON object and nothing else, using exactly this shape:
{
  "summary": "one paragraph overview",
  "riskLevel": "none" | "low" | "medium" | "high" | "critical",
  "vulnerabilities": [
    {
      "type": "vulnerability class, e.g. SQL injection",
      "severity": "low" | "medium" | "high" | "critical",
      "line": 0,
      "description": "what is wrong",
      "recommendation": "how to fix it"
    }
  ]
}
Use an empty vulnerabilities array when nothing is found.`

// Profile carries the per-request-kind provider parameters.
type Profile struct {
	Name         string
	SystemPrompt string
	MaxTokens    int
	// Stateless profiles neither read nor write the session history.
	Stateless bool

	temperature      float64
	fixedTemperature bool
}

// Temperature is the profile's fixed value or, for chat profiles, the configured chat temperature.
func (p Profile) Temperature(settings domain.Settings) float64 {
	if p.fixedTemperature {
		return p.temperature
	}
	if settings.ChatTemperature < 0 || settings.ChatTemperature > 2 {
		return domain.DefaultChatTemperature
	}
	return settings.ChatTemperature
}

var (
	ChatProfile = Profile{
		Name:         "chat",
		SystemPrompt: chatSystemPrompt,
		MaxTokens:    2048,
	}
	TestGenerationProfile = Profile{
		Name:             "generate-tests",
		SystemPrompt:     testSystemPrompt,
		MaxTokens:        4096,
		Stateless:        true,
		temperature:      0.3,
		fixedTemperature: true,
	}
	VulnerabilityScanProfile = Profile{
		Name:             "scan-vulnerabilities",
		SystemPrompt:     scanSystemPrompt,
		MaxTokens:        4096,
		Stateless:        true,
		temperature:      0.2,
		fixedTemperature: true,
	}
)
