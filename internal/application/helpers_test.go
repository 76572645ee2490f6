package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/stretchr/testify/mock"
)

func mockAnyContext() interface{} {
	return mock.Anything
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryUsageRepository struct {
	mu      sync.Mutex
	record  domain.UsageRecord
	saves   int
	saveErr error
}

func (r *memoryUsageRepository) Load(context.Context) (domain.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record.Clone(), nil
}

func (r *memoryUsageRepository) Save(_ context.Context, record domain.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.record = record.Clone()
	return nil
}

func (r *memoryUsageRepository) Record() domain.UsageRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record.Clone()
}

func noEnv(string) (string, bool) {
	return "", false
}
