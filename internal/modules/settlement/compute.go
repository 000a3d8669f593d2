package settlement

import (
	"time"

	"telecare/internal/domain"
)

// ComputePayout splits a booking's gross price into platform commission, flat
// booking fee and provider payout. Pure: same inputs, same record.
//
// payout = gross - round_half_up(gross * rate / 100) - bookingFee
//
// A negative payout is never emitted; it fails with ErrNegativeSettlement so
// a misconfigured fee schedule surfaces immediately instead of quietly
// shorting providers.
func ComputePayout(b *domain.Booking, fs domain.FeeSchedule) (domain.SettlementRecord, error) {
	if b.PriceSnapshot == nil {
		return domain.SettlementRecord{}, ErrMissingPriceSnapshot
	}

	gross := *b.PriceSnapshot
	commission := gross.Percent(fs.CommissionRatePercent)
	payout := gross.Sub(commission).Sub(fs.BookingFee)
	if payout.IsNegative() {
		return domain.SettlementRecord{}, ErrNegativeSettlement
	}

	return domain.SettlementRecord{
		BookingID:          b.ID,
		GrossAmount:        gross,
		PlatformCommission: commission,
		BookingFee:         fs.BookingFee,
		ProviderPayout:     payout,
	}, nil
}

// ReleaseAt computes when a paid payment's escrow hold expires.
func ReleaseAt(p *domain.Payment, fs domain.FeeSchedule) (time.Time, error) {
	if p.Status != domain.PaymentPaid || p.PaidAt == nil {
		return time.Time{}, ErrPaymentNotPaid
	}
	return p.PaidAt.AddDate(0, 0, fs.EscrowHoldDays), nil
}

// RefundAmount computes the patient refund on cancellation: the paid amount
// minus the cancellation fee, floored at zero. Unlike the payout path this
// never fails: a fee larger than the payment is absorbed, because shorting a
// patient refund is bounded by the fee while a negative payout is unbounded
// operator error.
func RefundAmount(p *domain.Payment, fs domain.FeeSchedule) domain.Money {
	refund := p.Amount.Sub(fs.CancellationFee)
	if refund.IsNegative() {
		return 0
	}
	return refund
}
