package domain

import "time"

// SettlementRecord is the split of a booking's gross price into platform
// commission, flat booking fee and provider payout. It is a pure function of
// (booking, payment, fee schedule) and is recomputed on demand rather than
// stored; the durable artifact of settlement is the EscrowRelease row.
type SettlementRecord struct {
	BookingID          string     `json:"booking_id"`
	GrossAmount        Money      `json:"gross_amount"`
	PlatformCommission Money      `json:"platform_commission"`
	BookingFee         Money      `json:"booking_fee"`
	ProviderPayout     Money      `json:"provider_payout"`
	EscrowReleaseAt    *time.Time `json:"escrow_release_at,omitempty"`
	Released           bool       `json:"released"`
}

// EscrowRelease tracks the hold on a paid payment's provider share. One row
// per payment; Released flips exactly once via a guarded update so a release
// sweep firing twice around the due time cannot pay a provider twice.
type EscrowRelease struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	BookingID string `json:"booking_id"`
	Amount    Money  `json:"amount"`

	ReleaseDue time.Time  `json:"release_due"`
	Released   bool       `json:"released"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`

	// Cancelled marks holds voided by a refund before release; the sweep
	// skips them.
	Cancelled bool `json:"cancelled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
