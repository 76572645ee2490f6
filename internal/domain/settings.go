package domain

import "time"

const (
	DefaultChatTemperature = 0.7
	DefaultProviderBaseURL = "https://api.cerebras.ai/v1"
)

// Settings is the operator-controlled configuration surface, re-read on every use.
type Settings struct {
	APIKey          string
	DailyLimit      int
	ChatModel       string
	ChatTemperature float64
	ProviderBaseURL string
	ProviderTimeout time.Duration
}

func (s Settings) Quota() QuotaConfig {
	return QuotaConfig{DailyLimit: s.DailyLimit}.Normalize()
}

// Model returns selected when non-empty, else the configured default chat model.
func (s Settings) Model(selected string) string {
	if selected != "" {
		return selected
	}
	if s.ChatModel != "" {
		return s.ChatModel
	}
	return DefaultChatModel
}
