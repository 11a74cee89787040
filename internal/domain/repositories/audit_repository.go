package repositories

import (
	"context"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// AuditRepository records generated/viewed events for recommendation runs.
type AuditRepository interface {
	LogEvent(ctx context.Context, event *entities.AuditEvent) error
}
