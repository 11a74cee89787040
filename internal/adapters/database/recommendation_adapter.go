package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/repositories"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinio/carematch-backend/pkg/errors"
)

// RecommendationAdapter implements the RecommendationRepository interface
type RecommendationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRecommendationAdapter creates a new recommendation adapter
func NewRecommendationAdapter(client *postgres.Client) repositories.RecommendationRepository {
	return &RecommendationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create supersedes the previous current run for the request and inserts
// the new run with its detail rows, all in one transaction.
func (a *RecommendationAdapter) Create(ctx context.Context, result *entities.RecommendationResult) error {
	exclusions, err := json.Marshal(result.Exclusions)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal exclusions", err)
	}
	nearEligible, err := json.Marshal(result.NearEligible)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal near-eligible entries", err)
	}
	softPreferences, err := json.Marshal(result.SoftPreferences)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal soft preferences", err)
	}
	holisticSignal, err := json.Marshal(result.HolisticSignal)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal holistic signal", err)
	}

	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	supersede, args, err := a.db.Update("recommendation_runs").
		Set(goqu.Record{"is_current": false}).
		Where(goqu.Ex{"request_id": result.RequestID, "is_current": true}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build supersede query", err)
	}
	if _, err := tx.ExecContext(ctx, supersede, args...); err != nil {
		return apperrors.NewInternalError("failed to supersede previous run", err)
	}

	runRecord := goqu.Record{
		"id":               result.ID,
		"request_id":       result.RequestID,
		"is_current":       result.IsCurrent,
		"advisory_summary": result.AdvisorySummary,
		"soft_preferences": softPreferences,
		"holistic_signal":  holisticSignal,
		"exclusions":       exclusions,
		"near_eligible":    nearEligible,
		"config_key":       result.ConfigKey,
		"config_version":   result.ConfigVersion,
		"generated_at":     result.GeneratedAt,
		"processing_ms":    result.ProcessingMs,
	}
	insertRun, args, err := a.db.Insert("recommendation_runs").Rows(runRecord).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build run insert query", err)
	}
	if _, err := tx.ExecContext(ctx, insertRun, args...); err != nil {
		return apperrors.NewInternalError("failed to insert recommendation run", err)
	}

	for _, d := range result.Details {
		score, err := json.Marshal(d.Score)
		if err != nil {
			return apperrors.NewInternalError("failed to marshal score breakdown", err)
		}
		availability, err := json.Marshal(d.Availability)
		if err != nil {
			return apperrors.NewInternalError("failed to marshal availability summary", err)
		}

		var adjustment sql.NullFloat64
		if d.AdvisoryAdjustment != nil {
			adjustment = sql.NullFloat64{Float64: *d.AdvisoryAdjustment, Valid: true}
		}

		detailRecord := goqu.Record{
			"id":                  d.ID,
			"run_id":              result.ID,
			"professional_id":     d.ProfessionalID,
			"display_name":        d.DisplayName,
			"rank":                d.Rank,
			"score":               score,
			"adjusted_total":      d.AdjustedTotal,
			"advisory_adjustment": adjustment,
			"advisory_bullets":    pq.Array(d.AdvisoryBullets),
			"matched_motifs":      pq.Array(d.MatchedMotifs),
			"missing_motifs":      pq.Array(d.MissingMotifs),
			"matched_specialties": pq.Array(d.MatchedSpecialties),
			"availability":        availability,
		}
		insertDetail, args, err := a.db.Insert("recommendation_details").Rows(detailRecord).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build detail insert query", err)
		}
		if _, err := tx.ExecContext(ctx, insertDetail, args...); err != nil {
			return apperrors.NewInternalError("failed to insert recommendation detail", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit recommendation run", err)
	}

	return nil
}

// GetCurrent returns the current run for a request, or (nil, nil) when the
// request has no run yet.
func (a *RecommendationAdapter) GetCurrent(ctx context.Context, requestID string) (*entities.RecommendationResult, error) {
	return a.getOne(ctx, goqu.Ex{"request_id": requestID, "is_current": true})
}

// GetByID returns a run by its id, or (nil, nil) when absent.
func (a *RecommendationAdapter) GetByID(ctx context.Context, id string) (*entities.RecommendationResult, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

func (a *RecommendationAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.RecommendationResult, error) {
	query, args, err := a.db.Select(
		"id", "request_id", "is_current", "advisory_summary",
		"soft_preferences", "holistic_signal", "exclusions", "near_eligible",
		"config_key", "config_version", "generated_at", "processing_ms",
	).From("recommendation_runs").
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build run query", err)
	}

	result := &entities.RecommendationResult{}
	var softPreferences, holisticSignal, exclusions, nearEligible []byte

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&result.ID,
		&result.RequestID,
		&result.IsCurrent,
		&result.AdvisorySummary,
		&softPreferences,
		&holisticSignal,
		&exclusions,
		&nearEligible,
		&result.ConfigKey,
		&result.ConfigVersion,
		&result.GeneratedAt,
		&result.ProcessingMs,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get recommendation run", err)
	}

	if err := json.Unmarshal(softPreferences, &result.SoftPreferences); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal soft preferences", err)
	}
	if err := json.Unmarshal(holisticSignal, &result.HolisticSignal); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal holistic signal", err)
	}
	if err := json.Unmarshal(exclusions, &result.Exclusions); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal exclusions", err)
	}
	if err := json.Unmarshal(nearEligible, &result.NearEligible); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal near-eligible entries", err)
	}

	if result.Details, err = a.loadDetails(ctx, result.ID); err != nil {
		return nil, err
	}

	return result, nil
}

func (a *RecommendationAdapter) loadDetails(ctx context.Context, runID string) ([]entities.RecommendationDetail, error) {
	query, args, err := a.db.Select(
		"id", "professional_id", "display_name", "rank",
		"score", "adjusted_total", "advisory_adjustment", "advisory_bullets",
		"matched_motifs", "missing_motifs", "matched_specialties", "availability",
	).From("recommendation_details").
		Where(goqu.Ex{"run_id": runID}).
		Order(goqu.I("rank").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build detail query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get recommendation details", err)
	}
	defer rows.Close()

	var details []entities.RecommendationDetail
	for rows.Next() {
		var d entities.RecommendationDetail
		var score, availability []byte
		var adjustment sql.NullFloat64
		var bullets, matched, missing, specialties pq.StringArray

		if err := rows.Scan(
			&d.ID,
			&d.ProfessionalID,
			&d.DisplayName,
			&d.Rank,
			&score,
			&d.AdjustedTotal,
			&adjustment,
			&bullets,
			&matched,
			&missing,
			&specialties,
			&availability,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan recommendation detail", err)
		}

		if adjustment.Valid {
			v := adjustment.Float64
			d.AdvisoryAdjustment = &v
		}
		d.AdvisoryBullets = bullets
		d.MatchedMotifs = matched
		d.MissingMotifs = missing
		d.MatchedSpecialties = specialties

		if err := json.Unmarshal(score, &d.Score); err != nil {
			return nil, apperrors.NewInternalError("failed to unmarshal score breakdown", err)
		}
		if err := json.Unmarshal(availability, &d.Availability); err != nil {
			return nil, apperrors.NewInternalError("failed to unmarshal availability summary", err)
		}

		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate recommendation details", err)
	}

	return details, nil
}
