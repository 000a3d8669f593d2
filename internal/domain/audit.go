package domain

import "time"

// AuditEventKind separates normal lifecycle transitions from operator-forced
// ones, so analytics can report the two populations independently.
type AuditEventKind string

const (
	AuditLifecycle     AuditEventKind = "lifecycle"
	AuditAdminOverride AuditEventKind = "admin_override"
)

// AuditEvent is an append-only record of a booking status change.
type AuditEvent struct {
	ID        string         `json:"id"`
	BookingID string         `json:"booking_id"`
	Kind      AuditEventKind `json:"kind"`

	FromStatus BookingStatus `json:"from_status"`
	ToStatus   BookingStatus `json:"to_status"`
	Event      BookingEvent  `json:"event,omitempty"`

	// OperatorID and Note are set only for admin overrides; the note is
	// mandatory on that path.
	OperatorID string `json:"operator_id,omitempty"`
	Note       string `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
