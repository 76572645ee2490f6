package ports

import (
	"context"

	"github.com/bnema/codelynx/internal/domain"
)

type SettingsSource interface {
	Load(ctx context.Context) (domain.Settings, error)
}
