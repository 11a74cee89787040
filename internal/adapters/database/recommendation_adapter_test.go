package database_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/carematch-backend/internal/adapters/database"
	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
)

func sampleResult() *entities.RecommendationResult {
	adjustment := 1.5
	return &entities.RecommendationResult{
		ID:        "run-1",
		RequestID: "req-1",
		Details: []entities.RecommendationDetail{
			{
				ID:                 "det-1",
				ProfessionalID:     "pro-1",
				DisplayName:        "Pro One",
				Rank:               1,
				Score:              entities.ScoreBreakdown{Total: 0.72},
				AdjustedTotal:      0.87,
				AdvisoryAdjustment: &adjustment,
				AdvisoryBullets:    []string{"strong motif overlap"},
				MatchedMotifs:      []string{"anxiety"},
			},
		},
		Exclusions:      []entities.Exclusion{{ProfessionalID: "pro-2", Reason: entities.ExclusionNoAvailability}},
		AdvisorySummary: "pro-1 fits best",
		ConfigKey:       "default",
		ConfigVersion:   1,
		GeneratedAt:     time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		ProcessingMs:    42,
		IsCurrent:       true,
	}
}

func TestRecommendationAdapter_Create_SupersedesInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	adapter := database.NewRecommendationAdapter(postgres.NewClientWithDB(db))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "recommendation_runs"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "recommendation_runs"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "recommendation_details"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = adapter.Create(context.Background(), sampleResult())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationAdapter_Create_RollsBackOnDetailFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	adapter := database.NewRecommendationAdapter(postgres.NewClientWithDB(db))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "recommendation_runs"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "recommendation_runs"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "recommendation_details"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = adapter.Create(context.Background(), sampleResult())

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationAdapter_GetCurrent_NoRunReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	adapter := database.NewRecommendationAdapter(postgres.NewClientWithDB(db))

	mock.ExpectQuery(`SELECT .* FROM "recommendation_runs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	result, err := adapter.GetCurrent(context.Background(), "req-1")

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationAdapter_GetCurrent_LoadsDetails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	adapter := database.NewRecommendationAdapter(postgres.NewClientWithDB(db))

	softPreferences, _ := json.Marshal(entities.SoftPreferences{Timing: "evenings"})
	holisticSignal, _ := json.Marshal(entities.HolisticSignal{Score: 0.4})
	exclusions, _ := json.Marshal([]entities.Exclusion{})
	nearEligible, _ := json.Marshal([]entities.NearEligible{})

	mock.ExpectQuery(`SELECT .* FROM "recommendation_runs"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "request_id", "is_current", "advisory_summary",
			"soft_preferences", "holistic_signal", "exclusions", "near_eligible",
			"config_key", "config_version", "generated_at", "processing_ms",
		}).AddRow(
			"run-1", "req-1", true, "summary",
			softPreferences, holisticSignal, exclusions, nearEligible,
			"default", 1, time.Now(), int64(42),
		))

	score, _ := json.Marshal(entities.ScoreBreakdown{Total: 0.72})
	availability, _ := json.Marshal(entities.AvailabilitySummary{SlotsInWindow: 3})

	mock.ExpectQuery(`SELECT .* FROM "recommendation_details"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "professional_id", "display_name", "rank",
			"score", "adjusted_total", "advisory_adjustment", "advisory_bullets",
			"matched_motifs", "missing_motifs", "matched_specialties", "availability",
		}).AddRow(
			"det-1", "pro-1", "Pro One", 1,
			score, 0.72, nil, "{}",
			`{"anxiety"}`, "{}", "{}", availability,
		))

	result, err := adapter.GetCurrent(context.Background(), "req-1")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "run-1", result.ID)
	assert.Equal(t, "evenings", result.SoftPreferences.Timing)
	require.Len(t, result.Details, 1)
	assert.Equal(t, "pro-1", result.Details[0].ProfessionalID)
	assert.Equal(t, []string{"anxiety"}, []string(result.Details[0].MatchedMotifs))
	assert.Nil(t, result.Details[0].AdvisoryAdjustment)
	assert.Equal(t, 3, result.Details[0].Availability.SlotsInWindow)
	assert.NoError(t, mock.ExpectationsWereMet())
}
