package services

import (
	"sort"
	"time"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// ComputeAvailability derives one professional's availability summary from
// schedule blocks and bookings over [from, to). Block time already in the
// past relative to now is clipped, and time consumed by overlapping
// bookings is subtracted. The result is a coarse estimate: slots may be
// taken between computation and use.
func ComputeAvailability(blocks []entities.ScheduleBlock, bookings []entities.Booking, now, from, to time.Time, slotMinutes int) entities.AvailabilitySummary {
	summary := entities.AvailabilitySummary{
		WindowStart: from,
		WindowEnd:   to,
	}

	sorted := make([]entities.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status != entities.BookingStatusCancelled {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartsAt.Before(sorted[j].StartsAt) })

	freeMinutes := 0.0
	var next *time.Time

	for _, block := range blocks {
		if block.Kind != entities.ScheduleBlockAvailable {
			continue
		}

		start := block.StartsAt
		if start.Before(from) {
			start = from
		}
		if start.Before(now) {
			start = now
		}
		end := block.EndsAt
		if end.After(to) {
			end = to
		}
		if !start.Before(end) {
			continue
		}

		cursor := start
		for _, b := range sorted {
			if !b.EndsAt.After(cursor) {
				continue
			}
			if !b.StartsAt.Before(end) {
				break
			}
			if b.StartsAt.After(cursor) {
				gapEnd := b.StartsAt
				if gapEnd.After(end) {
					gapEnd = end
				}
				freeMinutes += gapEnd.Sub(cursor).Minutes()
				if next == nil {
					t := cursor
					next = &t
				}
			}
			if b.EndsAt.After(cursor) {
				cursor = b.EndsAt
			}
			if !cursor.Before(end) {
				break
			}
		}
		if cursor.Before(end) {
			freeMinutes += end.Sub(cursor).Minutes()
			if next == nil {
				t := cursor
				next = &t
			}
		}
	}

	summary.HoursInWindow = freeMinutes / 60
	if slotMinutes > 0 {
		summary.SlotsInWindow = int(freeMinutes) / slotMinutes
	}
	summary.NextSlot = next
	return summary
}
