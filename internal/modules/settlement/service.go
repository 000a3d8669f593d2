package settlement

import (
	"context"
	"errors"

	"telecare/internal/domain"
	"telecare/internal/metrics"
	"telecare/internal/notifier"
	"telecare/internal/pkg/clock"
	"telecare/internal/repository"

	"github.com/rs/zerolog"
)

// Service is the settlement engine: payout computation, escrow scheduling
// and release, and cancellation refunds. The fee schedule is captured at
// construction as an immutable snapshot; every computation in this service's
// lifetime sees the same rates.
type Service struct {
	bookings BookingReader
	payments PaymentStore
	escrow   EscrowStore
	fees     domain.FeeSchedule
	clock    clock.Clock
	notifs   notifier.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(
	bookings BookingReader,
	payments PaymentStore,
	escrow EscrowStore,
	fees domain.FeeSchedule,
	clk clock.Clock,
	notifs notifier.Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		bookings: bookings,
		payments: payments,
		escrow:   escrow,
		fees:     fees,
		clock:    clk,
		notifs:   notifs,
		metrics:  m,
		logger:   logger.With().Str("component", "settlement").Logger(),
	}
}

// FeeSchedule returns the snapshot this engine settles against.
func (s *Service) FeeSchedule() domain.FeeSchedule { return s.fees }

// ComputePayout derives the settlement record for a booking.
func (s *Service) ComputePayout(ctx context.Context, bookingID string) (domain.SettlementRecord, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.SettlementRecord{}, ErrBookingNotFound
		}
		return domain.SettlementRecord{}, err
	}

	record, err := ComputePayout(b, s.fees)
	if err != nil {
		s.recordFailure(bookingID, err)
		return domain.SettlementRecord{}, err
	}

	s.metrics.SettlementsComputed.Inc()

	// Attach escrow state when a hold exists for the booking's payment.
	if p, perr := s.payments.GetLiveByBooking(ctx, bookingID); perr == nil {
		if hold, herr := s.escrow.GetByPaymentID(ctx, p.ID); herr == nil {
			due := hold.ReleaseDue
			record.EscrowReleaseAt = &due
			record.Released = hold.Released
		}
	}

	return record, nil
}

// ScheduleEscrowRelease persists the hold on a paid payment's provider share.
// release due = paidAt + escrowHoldDays. Idempotent: a second call for the
// same payment returns the existing hold.
func (s *Service) ScheduleEscrowRelease(ctx context.Context, p *domain.Payment) (*domain.EscrowRelease, error) {
	releaseAt, err := ReleaseAt(p, s.fees)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	record, err := ComputePayout(b, s.fees)
	if err != nil {
		s.recordFailure(b.ID, err)
		return nil, err
	}

	hold := &domain.EscrowRelease{
		PaymentID:  p.ID,
		BookingID:  p.BookingID,
		Amount:     record.ProviderPayout,
		ReleaseDue: releaseAt,
	}
	if err := s.escrow.Create(ctx, hold); err != nil {
		if errors.Is(err, repository.ErrEscrowExists) {
			return s.escrow.GetByPaymentID(ctx, p.ID)
		}
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", p.BookingID).
		Str("payment_id", p.ID).
		Time("release_due", releaseAt).
		Msg("escrow release scheduled")
	return hold, nil
}

// ReleaseEscrow marks a hold released and notifies the payout collaborator.
// At-most-once: the repository's conditional update is the guard, so a
// re-invocation (or a concurrent sweep tick) is a no-op success returning the
// already-released hold.
func (s *Service) ReleaseEscrow(ctx context.Context, paymentID string) (*domain.EscrowRelease, error) {
	changed, err := s.escrow.MarkReleased(ctx, paymentID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	hold, err := s.escrow.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEscrowNotFound
		}
		return nil, err
	}

	if changed {
		s.metrics.EscrowReleased.Inc()
		s.notifs.Publish(ctx, notifier.Event{
			Type:       notifier.TypeEscrowReleased,
			BookingID:  hold.BookingID,
			Amount:     int64(hold.Amount),
			OccurredAt: s.clock.Now(),
		})
		s.logger.Info().
			Str("payment_id", paymentID).
			Str("booking_id", hold.BookingID).
			Int64("amount", int64(hold.Amount)).
			Msg("escrow released")
	}

	return hold, nil
}

// ReleaseDue releases every hold past its due time. Called by the sweep
// worker; safe to run concurrently because each release is individually
// guarded.
func (s *Service) ReleaseDue(ctx context.Context) (int, error) {
	due, err := s.escrow.ListDue(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	released := 0
	for _, hold := range due {
		if _, err := s.ReleaseEscrow(ctx, hold.PaymentID); err != nil {
			s.logger.Error().Err(err).Str("payment_id", hold.PaymentID).Msg("release sweep: release failed")
			continue
		}
		released++
	}
	return released, nil
}

// HandleCompletion runs when a consultation ends: compute the payout and
// schedule the escrow release for the paid payment. Settlement failures do
// not undo the completed consultation; they are alerted for an operator.
func (s *Service) HandleCompletion(ctx context.Context, b *domain.Booking) {
	record, err := ComputePayout(b, s.fees)
	if err != nil {
		s.recordFailure(b.ID, err)
		s.notifs.Publish(ctx, notifier.Event{
			Type:       notifier.TypeSettlementFailure,
			BookingID:  b.ID,
			ProviderID: b.ProviderID,
			Note:       err.Error(),
			OccurredAt: s.clock.Now(),
		})
		return
	}
	s.metrics.SettlementsComputed.Inc()

	p, err := s.payments.GetLiveByBooking(ctx, b.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("booking_id", b.ID).Msg("completion without a live payment; no escrow to schedule")
		return
	}
	if _, err := s.ScheduleEscrowRelease(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("escrow scheduling failed")
		return
	}

	s.logger.Info().
		Str("booking_id", b.ID).
		Int64("payout", int64(record.ProviderPayout)).
		Msg("settlement computed on completion")
}

// HandleCancellation refunds the live payment when a booking is cancelled.
// A paid payment is refunded minus the cancellation fee; a still-pending one
// is marked failed. Holds not yet released are voided.
func (s *Service) HandleCancellation(ctx context.Context, b *domain.Booking) error {
	p, err := s.payments.GetLiveByBooking(ctx, b.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil // nothing collected, nothing to refund
		}
		return err
	}

	now := s.clock.Now()

	if p.Status == domain.PaymentPending {
		p.Status = domain.PaymentFailed
		p.FailureReason = "booking cancelled"
		return s.payments.Update(ctx, p)
	}

	refund := RefundAmount(p, s.fees)
	p.Status = domain.PaymentRefunded
	p.RefundAmount = &refund
	p.RefundedAt = &now
	if err := s.payments.Update(ctx, p); err != nil {
		return err
	}

	if _, err := s.escrow.MarkCancelled(ctx, p.ID); err != nil {
		s.logger.Error().Err(err).Str("payment_id", p.ID).Msg("failed to void escrow hold on refund")
	}

	s.metrics.RefundsIssued.Inc()
	s.notifs.Publish(ctx, notifier.Event{
		Type:       notifier.TypeRefundIssued,
		BookingID:  b.ID,
		PatientID:  b.PatientID,
		Amount:     int64(refund),
		OccurredAt: now,
	})
	s.logger.Info().
		Str("booking_id", b.ID).
		Int64("refund", int64(refund)).
		Msg("refund issued on cancellation")
	return nil
}

func (s *Service) recordFailure(bookingID string, err error) {
	reason := "unknown"
	switch {
	case errors.Is(err, ErrMissingPriceSnapshot):
		reason = "missing_price_snapshot"
	case errors.Is(err, ErrNegativeSettlement):
		reason = "negative_settlement"
	}
	s.metrics.SettlementFailures.WithLabelValues(reason).Inc()
	s.logger.Error().Err(err).Str("booking_id", bookingID).Str("reason", reason).Msg("settlement failed closed")
}
