package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
	"github.com/charmbracelet/log"
)

const unknownModel = "unknown"

// UsageLedger is the single writer of the persisted usage record.
// Every operation reloads the record, applies the day rollover, mutates and saves under one lock.
type UsageLedger struct {
	mu     sync.Mutex
	repo   ports.UsageRepository
	clock  ports.Clock
	logger *log.Logger

	// last is served instead of the repository while unsaved is set, or when a reload fails.
	last    domain.UsageRecord
	loaded  bool
	unsaved bool

	// reserved counts turns that passed Reserve and have not called Release yet.
	reserved uint64
}

func NewUsageLedger(repo ports.UsageRepository, clock ports.Clock, logger *log.Logger) *UsageLedger {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &UsageLedger{
		repo:   repo,
		clock:  clock,
		logger: orDiscard(logger),
	}
}

// CheckQuota reports whether one more request fits today, counting reserved turns as used.
func (l *UsageLedger) CheckQuota(ctx context.Context, limit int) (domain.QuotaDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.decide(ctx, limit)
}

// Reserve holds one request slot when the quota allows it. Every allowed reservation must be released,
// after RecordRequest when the turn succeeded.
func (l *UsageLedger) Reserve(ctx context.Context, limit int) (domain.QuotaDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	decision, err := l.decide(ctx, limit)
	if err != nil {
		return domain.QuotaDecision{}, err
	}
	if decision.Allowed {
		l.reserved++
	}

	return decision, nil
}

func (l *UsageLedger) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.reserved > 0 {
		l.reserved--
	}
}

// decide must be called with l.mu held.
func (l *UsageLedger) decide(ctx context.Context, limit int) (domain.QuotaDecision, error) {
	limit = domain.QuotaConfig{DailyLimit: limit}.Normalize().DailyLimit

	record, err := l.current(ctx)
	if err != nil {
		return domain.QuotaDecision{}, err
	}

	used := record.DailyRequests + l.reserved
	return domain.QuotaDecision{
		Allowed: used < uint64(limit),
		Used:    used,
		Limit:   limit,
	}, nil
}

// RecordRequest counts one successful completion. A save failure keeps the in-memory counters.
func (l *UsageLedger) RecordRequest(ctx context.Context, model string, promptTokens, completionTokens uint64) error {
	model = strings.TrimSpace(model)
	if model == "" {
		model = unknownModel
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.current(ctx)
	if err != nil {
		return err
	}

	record.TotalRequests++
	record.DailyRequests++
	record.Tokens.Prompt += promptTokens
	record.Tokens.Completion += completionTokens
	record.Tokens.Total += promptTokens + completionTokens
	record.Models[model]++

	if err := l.save(ctx, record); err != nil {
		return err
	}

	l.logger.Debug("usage recorded", "model", model, "daily", record.DailyRequests, "total", record.TotalRequests)
	return nil
}

// ResetDaily zeroes today's counter only; lifetime totals and per-model counts are kept.
func (l *UsageLedger) ResetDaily(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.current(ctx)
	if err != nil {
		return err
	}

	record.DailyRequests = 0
	record.DailyResetDate = l.clock.Now().Format(domain.DateLayout)

	if err := l.save(ctx, record); err != nil {
		return err
	}

	l.logger.Info("daily usage reset")
	return nil
}

func (l *UsageLedger) Snapshot(ctx context.Context) (domain.UsageRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.current(ctx)
	if err != nil {
		return domain.UsageRecord{}, err
	}

	return record.Clone(), nil
}

// Serialize renders the snapshot as indented JSON, the export format.
func (l *UsageLedger) Serialize(ctx context.Context) ([]byte, error) {
	record, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode usage record: %w", err)
	}

	return payload, nil
}

// current must be called with l.mu held.
func (l *UsageLedger) current(ctx context.Context) (domain.UsageRecord, error) {
	var record domain.UsageRecord
	if l.unsaved {
		record = l.last
	} else {
		loaded, err := l.repo.Load(ctx)
		switch {
		case err == nil:
			record = loaded
		case !l.loaded || isContextError(err):
			return domain.UsageRecord{}, fmt.Errorf("load usage record: %w", err)
		default:
			l.logger.Warn("usage record unreadable, using last known counters", "err", err)
			record = l.last
		}
	}

	record = record.Clone()
	l.loaded = true
	l.last = record.Clone()

	if record.RollOver(l.clock.Now()) {
		l.logger.Debug("daily usage rolled over", "date", record.DailyResetDate)
		if err := l.save(ctx, record); err != nil {
			l.logger.Warn("persist daily rollover failed", "err", err)
		}
	}

	return record, nil
}

// save must be called with l.mu held. The record stays authoritative in memory when the write fails.
func (l *UsageLedger) save(ctx context.Context, record domain.UsageRecord) error {
	l.last = record.Clone()
	if err := l.repo.Save(ctx, record); err != nil {
		l.unsaved = true
		return fmt.Errorf("save usage record: %w", err)
	}

	l.unsaved = false
	return nil
}
