package toml

import (
	"fmt"

	"github.com/bnema/codelynx/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version   int         `toml:"version"`
	UpdatedAt string      `toml:"updated_at,omitempty"`
	Usage     usageSchema `toml:"usage"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.Usage.Models == nil {
		s.Usage.Models = map[string]uint64{}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported usage schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type usageSchema struct {
	TotalRequests  uint64            `toml:"total_requests"`
	DailyRequests  uint64            `toml:"daily_requests"`
	DailyResetDate string            `toml:"daily_reset_date"`
	Tokens         tokensSchema      `toml:"tokens"`
	Models         map[string]uint64 `toml:"models"`
}

type tokensSchema struct {
	Prompt     uint64 `toml:"prompt"`
	Completion uint64 `toml:"completion"`
	Total      uint64 `toml:"total"`
}

func toSchema(record domain.UsageRecord) usageSchema {
	models := make(map[string]uint64, len(record.Models))
	for model, count := range record.Models {
		models[model] = count
	}

	return usageSchema{
		TotalRequests:  record.TotalRequests,
		DailyRequests:  record.DailyRequests,
		DailyResetDate: record.DailyResetDate,
		Tokens: tokensSchema{
			Prompt:     record.Tokens.Prompt,
			Completion: record.Tokens.Completion,
			Total:      record.Tokens.Total,
		},
		Models: models,
	}
}

func fromSchema(usage usageSchema) domain.UsageRecord {
	record := domain.UsageRecord{
		TotalRequests:  usage.TotalRequests,
		DailyRequests:  usage.DailyRequests,
		DailyResetDate: usage.DailyResetDate,
		Tokens: domain.TokenUsage{
			Prompt:     usage.Tokens.Prompt,
			Completion: usage.Tokens.Completion,
			Total:      usage.Tokens.Total,
		},
		Models: usage.Models,
	}

	return record.Clone()
}
