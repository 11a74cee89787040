package entities

import "time"

// AuditEventType distinguishes recommendation audit events.
type AuditEventType string

const (
	AuditEventGenerated AuditEventType = "generated"
	AuditEventViewed    AuditEventType = "viewed"
)

// AuditEvent is one row of the recommendation audit trail. Writes are
// best effort; a failed audit write never fails the primary operation.
type AuditEvent struct {
	ID               string
	RecommendationID string
	RequestID        string
	EventType        AuditEventType
	Actor            string
	Context          map[string]string
	CreatedAt        time.Time
}
