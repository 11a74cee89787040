package repositories

import (
	"context"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// ConfigurationRepository looks up stored scoring configurations.
type ConfigurationRepository interface {
	// GetByKey returns the configuration for the given key, or (nil, nil)
	// when none is stored. Absence is not an error; callers fall back to
	// the built-in default.
	GetByKey(ctx context.Context, key string) (*entities.ScoringConfiguration, error)
}
