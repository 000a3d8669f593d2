package domain

import "fmt"

// FeeSchedule is the operator-configured settlement policy. It is loaded as
// an immutable snapshot and handed into each computation; the engine never
// reads it from a shared mutable source mid-computation, so two concurrent
// settlements of the same booking always see the same rates.
type FeeSchedule struct {
	CommissionRatePercent float64 `yaml:"commission_rate_percent" json:"commission_rate_percent"`
	BookingFee            Money   `yaml:"booking_fee" json:"booking_fee"`
	CancellationFee       Money   `yaml:"cancellation_fee" json:"cancellation_fee"`
	EscrowHoldDays        int     `yaml:"escrow_hold_days" json:"escrow_hold_days"`
	AutoReleaseEscrow     bool    `yaml:"auto_release_escrow" json:"auto_release_escrow"`
}

func (f FeeSchedule) Validate() error {
	if f.CommissionRatePercent < 0 || f.CommissionRatePercent > 100 {
		return fmt.Errorf("commission_rate_percent must be within [0,100], got %v", f.CommissionRatePercent)
	}
	if f.BookingFee < 0 {
		return fmt.Errorf("booking_fee must not be negative, got %d", f.BookingFee)
	}
	if f.CancellationFee < 0 {
		return fmt.Errorf("cancellation_fee must not be negative, got %d", f.CancellationFee)
	}
	if f.EscrowHoldDays < 0 {
		return fmt.Errorf("escrow_hold_days must not be negative, got %d", f.EscrowHoldDays)
	}
	return nil
}
