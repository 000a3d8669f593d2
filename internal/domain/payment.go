package domain

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// IsLive reports whether the payment still holds (or may come to hold) funds
// against its booking. A booking has at most one live payment; retries after
// a failure create a new row rather than mutating the failed one.
func (s PaymentStatus) IsLive() bool {
	return s == PaymentPending || s == PaymentPaid
}

// Payment tracks funds collected against a single booking.
type Payment struct {
	ID        string        `json:"id"`
	BookingID string        `json:"booking_id"`
	Amount    Money         `json:"amount"`
	Status    PaymentStatus `json:"status"`

	PaidAt        *time.Time `json:"paid_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`

	// RefundAmount is set when the owning booking is cancelled after payment:
	// amount minus the cancellation fee, floored at zero.
	RefundAmount *Money     `json:"refund_amount,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
