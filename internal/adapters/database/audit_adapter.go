package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/repositories"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinio/carematch-backend/pkg/errors"
)

// AuditAdapter implements the AuditRepository interface
type AuditAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAuditAdapter creates a new audit adapter
func NewAuditAdapter(client *postgres.Client) repositories.AuditRepository {
	return &AuditAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// LogEvent inserts one audit trail row.
func (a *AuditAdapter) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	id := event.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	eventContext, err := json.Marshal(event.Context)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal audit context", err)
	}

	record := goqu.Record{
		"id":                id,
		"recommendation_id": event.RecommendationID,
		"request_id":        event.RequestID,
		"event_type":        event.EventType,
		"actor":             event.Actor,
		"context":           eventContext,
		"created_at":        createdAt,
	}

	query, args, err := a.db.Insert("recommendation_audit_log").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build audit insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to log audit event", err)
	}

	return nil
}
