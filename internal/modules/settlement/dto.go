package settlement

import (
	"time"

	"telecare/internal/domain"
)

type SettlementResponse struct {
	BookingID          string     `json:"booking_id"`
	GrossAmount        int64      `json:"gross_amount"`
	PlatformCommission int64      `json:"platform_commission"`
	BookingFee         int64      `json:"booking_fee"`
	ProviderPayout     int64      `json:"provider_payout"`
	EscrowReleaseAt    *time.Time `json:"escrow_release_at,omitempty"`
	Released           bool       `json:"released"`
}

func toResponse(r domain.SettlementRecord) SettlementResponse {
	return SettlementResponse{
		BookingID:          r.BookingID,
		GrossAmount:        int64(r.GrossAmount),
		PlatformCommission: int64(r.PlatformCommission),
		BookingFee:         int64(r.BookingFee),
		ProviderPayout:     int64(r.ProviderPayout),
		EscrowReleaseAt:    r.EscrowReleaseAt,
		Released:           r.Released,
	}
}
