package domain

import "time"

type BookingStatus string

const (
	BookingRequested       BookingStatus = "requested"
	BookingPendingProvider BookingStatus = "pending_provider"
	BookingConfirmed       BookingStatus = "confirmed"
	BookingInProgress      BookingStatus = "in_progress"
	BookingCompleted       BookingStatus = "completed"
	BookingCancelled       BookingStatus = "cancelled"
)

// IsTerminal reports whether no further lifecycle event may move the booking.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingRequested, BookingPendingProvider, BookingConfirmed,
		BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

type ConsultationMode string

const (
	ModeInPerson ConsultationMode = "in_person"
	ModeRemote   ConsultationMode = "remote"
)

func (m ConsultationMode) Valid() bool {
	return m == ModeInPerson || m == ModeRemote
}

// BookingEvent is a lifecycle event reported by an external collaborator
// (scheduler, payment gateway, provider console).
type BookingEvent string

const (
	EventProviderAccepted      BookingEvent = "provider_accepted"
	EventPaymentConfirmed      BookingEvent = "payment_confirmed"
	EventConsultationStarted   BookingEvent = "consultation_started"
	EventConsultationEnded     BookingEvent = "consultation_ended"
	EventCancellationRequested BookingEvent = "cancellation_requested"
)

func (e BookingEvent) Valid() bool {
	_, ok := transitions[e]
	return ok
}

// transitions is the closed legality table: event -> (from -> to).
// Cancellation is legal from every non-terminal status.
var transitions = map[BookingEvent]map[BookingStatus]BookingStatus{
	EventProviderAccepted: {
		BookingRequested: BookingPendingProvider,
	},
	EventPaymentConfirmed: {
		BookingPendingProvider: BookingConfirmed,
	},
	EventConsultationStarted: {
		BookingConfirmed: BookingInProgress,
	},
	EventConsultationEnded: {
		BookingInProgress: BookingCompleted,
	},
	EventCancellationRequested: {
		BookingRequested:       BookingCancelled,
		BookingPendingProvider: BookingCancelled,
		BookingConfirmed:       BookingCancelled,
		BookingInProgress:      BookingCancelled,
	},
}

// NextStatus resolves an event against the legality table. changed=false with
// legal=true means the booking is already in the event's target status: the
// collaborator retried a notification and the request is an idempotent no-op.
func NextStatus(current BookingStatus, event BookingEvent) (next BookingStatus, changed, legal bool) {
	table, ok := transitions[event]
	if !ok {
		return current, false, false
	}
	if to, ok := table[current]; ok {
		return to, to != current, true
	}
	for _, to := range table {
		if to == current {
			return current, false, true
		}
	}
	return current, false, false
}

// Booking is a consultation request between a patient and a provider. Rows
// are never deleted; terminal bookings are retained for audit and analytics.
type Booking struct {
	ID         string `json:"id"`
	PatientID  string `json:"patient_id"`
	ProviderID string `json:"provider_id"`

	ScheduledAt    time.Time        `json:"scheduled_at"`
	Mode           ConsultationMode `json:"mode"`
	Reason         string           `json:"reason,omitempty"`
	ConsentGranted bool             `json:"consent_granted"`

	// ConsultationFee is the provider's quoted fee at request time.
	// PriceSnapshot copies it exactly once at confirmation and is immutable
	// afterwards: fee changes never retroactively reprice a confirmed booking.
	ConsultationFee Money  `json:"consultation_fee"`
	PriceSnapshot   *Money `json:"price_snapshot,omitempty"`

	Status             BookingStatus `json:"status"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FreezePrice copies the quoted fee into the price snapshot. No-op when the
// snapshot is already set.
func (b *Booking) FreezePrice() {
	if b.PriceSnapshot != nil {
		return
	}
	snap := b.ConsultationFee
	b.PriceSnapshot = &snap
}
