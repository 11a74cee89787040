package entities

import "time"

// ScheduleBlockKind distinguishes availability blocks from other schedule
// entries (time off, admin time).
type ScheduleBlockKind string

const (
	ScheduleBlockAvailable   ScheduleBlockKind = "available"
	ScheduleBlockUnavailable ScheduleBlockKind = "unavailable"
)

// ScheduleBlock is a contiguous span of time a professional has published
// on their calendar.
type ScheduleBlock struct {
	ID             string
	ProfessionalID string
	Kind           ScheduleBlockKind
	StartsAt       time.Time
	EndsAt         time.Time
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is time already consumed on a professional's calendar.
type Booking struct {
	ID             string
	ProfessionalID string
	Status         BookingStatus
	StartsAt       time.Time
	EndsAt         time.Time
}
