// Package notifier dispatches booking and settlement events to the outside
// world. Delivery is fire-and-forget: the booking path never blocks on it and
// never fails because of it.
package notifier

import (
	"context"
	"time"

	"telecare/internal/domain"
)

// Event is the wire shape published for every notification.
type Event struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	PatientID  string    `json:"patient_id,omitempty"`
	ProviderID string    `json:"provider_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	TypeBookingCreated    = "booking.created"
	TypeStatusChanged     = "booking.status_changed"
	TypeAdminOverride     = "booking.admin_override"
	TypePaymentRecorded   = "payment.recorded"
	TypeRefundIssued      = "payment.refund_issued"
	TypeEscrowReleased    = "settlement.escrow_released"
	TypeSettlementFailure = "settlement.failure"
)

type Notifier interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

// Noop drops every event. Used when messaging is disabled and in tests.
type Noop struct{}

func (Noop) Publish(ctx context.Context, event Event) {}

func (Noop) Close() error { return nil }

// StatusChanged builds the common status-change event.
func StatusChanged(b *domain.Booking, at time.Time) Event {
	return Event{
		Type:       TypeStatusChanged,
		BookingID:  b.ID,
		PatientID:  b.PatientID,
		ProviderID: b.ProviderID,
		Status:     string(b.Status),
		OccurredAt: at,
	}
}
