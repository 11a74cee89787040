package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/repositories"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinio/carematch-backend/pkg/errors"
)

// ConfigurationAdapter implements the ConfigurationRepository interface
type ConfigurationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConfigurationAdapter creates a new configuration adapter
func NewConfigurationAdapter(client *postgres.Client) repositories.ConfigurationRepository {
	return &ConfigurationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByKey retrieves the scoring configuration for a key. A missing row is
// not an error; callers fall back to the built-in default.
func (a *ConfigurationAdapter) GetByKey(ctx context.Context, key string) (*entities.ScoringConfiguration, error) {
	query, args, err := a.db.Select(
		"key", "name", "version",
		"motif_weight", "specialty_weight", "availability_weight",
		"profession_fit_weight", "experience_weight",
		"require_motif_overlap", "require_clientele_match",
		"max_availability_hours", "max_experience_years",
		"availability_window_days",
		"advisory_system_prompt", "advisory_user_template",
		"created_at", "updated_at",
	).From("scoring_configurations").
		Where(goqu.Ex{"key": key}).
		Order(goqu.I("version").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build configuration query", err)
	}

	cfg := &entities.ScoringConfiguration{}
	var systemPrompt, userTemplate sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&cfg.Key,
		&cfg.Name,
		&cfg.Version,
		&cfg.Weights.MotifMatch,
		&cfg.Weights.SpecialtyMatch,
		&cfg.Weights.Availability,
		&cfg.Weights.ProfessionFit,
		&cfg.Weights.Experience,
		&cfg.RequireMotifOverlap,
		&cfg.RequireClienteleMatch,
		&cfg.MaxAvailabilityHours,
		&cfg.MaxExperienceYears,
		&cfg.AvailabilityWindowDays,
		&systemPrompt,
		&userTemplate,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get scoring configuration", err)
	}

	cfg.AdvisorySystemPrompt = systemPrompt.String
	cfg.AdvisoryUserTemplate = userTemplate.String

	return cfg, nil
}
