package database_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/carematch-backend/internal/adapters/database"
	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
)

func TestAuditAdapter_LogEvent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	adapter := database.NewAuditAdapter(postgres.NewClientWithDB(db))

	mock.ExpectExec(`INSERT INTO "recommendation_audit_log"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = adapter.LogEvent(context.Background(), &entities.AuditEvent{
		RecommendationID: "run-1",
		RequestID:        "req-1",
		EventType:        entities.AuditEventGenerated,
		Actor:            "tester",
		Context:          map[string]string{"eligible": "2"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditAdapter_LogEvent_PropagatesFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	adapter := database.NewAuditAdapter(postgres.NewClientWithDB(db))

	mock.ExpectExec(`INSERT INTO "recommendation_audit_log"`).
		WillReturnError(assert.AnError)

	err = adapter.LogEvent(context.Background(), &entities.AuditEvent{
		RecommendationID: "run-1",
		EventType:        entities.AuditEventViewed,
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
