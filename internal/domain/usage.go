package domain

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the calendar-day format of UsageRecord.DailyResetDate.
const DateLayout = "2006-01-02"

type TokenUsage struct {
	Prompt     uint64 `json:"prompt"`
	Completion uint64 `json:"completion"`
	Total      uint64 `json:"total"`
}

type UsageRecord struct {
	TotalRequests  uint64            `json:"totalRequests"`
	DailyRequests  uint64            `json:"dailyRequests"`
	DailyResetDate string            `json:"dailyResetDate"`
	Tokens         TokenUsage        `json:"tokens"`
	Models         map[string]uint64 `json:"models"`
}

// Clone returns a deep copy; Models is never nil in the result.
func (r UsageRecord) Clone() UsageRecord {
	clone := r
	clone.Models = make(map[string]uint64, len(r.Models))
	for model, count := range r.Models {
		clone.Models[model] = count
	}

	return clone
}

// RollOver zeroes the per-day counters when the stored day differs from now's calendar day.
// It reports whether a reset happened.
func (r *UsageRecord) RollOver(now time.Time) bool {
	today := now.Format(DateLayout)
	if r.DailyResetDate == today {
		return false
	}

	r.DailyRequests = 0
	r.DailyResetDate = today
	return true
}

type ModelShare struct {
	Model    string
	Requests uint64
	Percent  float64
}

// ModelShares orders per-model counts by requests, descending, with ties broken by name.
func (r UsageRecord) ModelShares() []ModelShare {
	shares := make([]ModelShare, 0, len(r.Models))
	for model, count := range r.Models {
		percent := 0.0
		if r.TotalRequests > 0 {
			percent = float64(count) / float64(r.TotalRequests) * 100
		}
		shares = append(shares, ModelShare{Model: model, Requests: count, Percent: percent})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Requests != shares[j].Requests {
			return shares[i].Requests > shares[j].Requests
		}
		return shares[i].Model < shares[j].Model
	})

	return shares
}

// DailyPercent is the share of the daily limit already used, capped at 100.
func (r UsageRecord) DailyPercent(limit int) float64 {
	if limit <= 0 {
		return 0
	}

	percent := float64(r.DailyRequests) / float64(limit) * 100
	if percent > 100 {
		return 100
	}

	return percent
}

func (t TokenUsage) TotalCompact() string {
	return CompactNumber(t.Total)
}

func CompactNumber(v uint64) string {
	if v < 1_000 {
		return fmt.Sprintf("%d", v)
	}

	if v < 1_000_000 {
		return fmt.Sprintf("%.1fk", float64(v)/1_000)
	}

	return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
}
