package ports

import (
	"context"

	"github.com/bnema/codelynx/internal/domain"
)

// UsageRepository is the flat counter store behind the usage ledger.
// Load returns a zero record when nothing has been stored yet.
type UsageRepository interface {
	Load(ctx context.Context) (domain.UsageRecord, error)
	Save(ctx context.Context, record domain.UsageRecord) error
}
