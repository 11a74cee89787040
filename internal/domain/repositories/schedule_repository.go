package repositories

import (
	"context"
	"time"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// ScheduleRepository reads calendar data used for availability computation.
type ScheduleRepository interface {
	// ListAvailableBlocks returns "available"-kind blocks intersecting
	// [from, to) for the given professionals.
	ListAvailableBlocks(ctx context.Context, professionalIDs []string, from, to time.Time) ([]entities.ScheduleBlock, error)

	// ListBookings returns bookings with one of the given statuses
	// intersecting [from, to) for the given professionals.
	ListBookings(ctx context.Context, professionalIDs []string, from, to time.Time, statuses []entities.BookingStatus) ([]entities.Booking, error)
}
