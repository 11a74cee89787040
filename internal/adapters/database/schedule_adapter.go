package database

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/repositories"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinio/carematch-backend/pkg/errors"
)

// ScheduleAdapter implements the ScheduleRepository interface
type ScheduleAdapter struct {
	client *postgres.Client
}

// NewScheduleAdapter creates a new schedule adapter
func NewScheduleAdapter(client *postgres.Client) repositories.ScheduleRepository {
	return &ScheduleAdapter{
		client: client,
	}
}

// ListAvailableBlocks returns available-kind schedule blocks intersecting
// [from, to) for the given professionals.
func (a *ScheduleAdapter) ListAvailableBlocks(ctx context.Context, professionalIDs []string, from, to time.Time) ([]entities.ScheduleBlock, error) {
	if len(professionalIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, professional_id, kind, starts_at, ends_at
		FROM schedule_blocks
		WHERE professional_id = ANY($1)
		  AND kind = $2
		  AND starts_at < $3
		  AND ends_at > $4
		ORDER BY starts_at
	`

	rows, err := a.client.DB().QueryContext(ctx, query,
		pq.Array(professionalIDs), entities.ScheduleBlockAvailable, to, from)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list schedule blocks", err)
	}
	defer rows.Close()

	var blocks []entities.ScheduleBlock
	for rows.Next() {
		var b entities.ScheduleBlock
		if err := rows.Scan(&b.ID, &b.ProfessionalID, &b.Kind, &b.StartsAt, &b.EndsAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan schedule block", err)
		}
		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate schedule blocks", err)
	}

	return blocks, nil
}

// ListBookings returns bookings with one of the given statuses intersecting
// [from, to) for the given professionals.
func (a *ScheduleAdapter) ListBookings(ctx context.Context, professionalIDs []string, from, to time.Time, statuses []entities.BookingStatus) ([]entities.Booking, error) {
	if len(professionalIDs) == 0 || len(statuses) == 0 {
		return nil, nil
	}

	statusValues := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusValues = append(statusValues, string(s))
	}

	query := `
		SELECT id, professional_id, status, starts_at, ends_at
		FROM bookings
		WHERE professional_id = ANY($1)
		  AND status = ANY($2)
		  AND starts_at < $3
		  AND ends_at > $4
		ORDER BY starts_at
	`

	rows, err := a.client.DB().QueryContext(ctx, query,
		pq.Array(professionalIDs), pq.Array(statusValues), to, from)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	var bookings []entities.Booking
	for rows.Next() {
		var b entities.Booking
		if err := rows.Scan(&b.ID, &b.ProfessionalID, &b.Status, &b.StartsAt, &b.EndsAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate bookings", err)
	}

	return bookings, nil
}
