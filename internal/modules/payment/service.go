package payment

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

type Service struct {
	bookings  BookingReader
	lifecycle LifecycleApplier
	payments  PaymentStore
	notifs    notifier.Notifier
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(
	bookings BookingReader,
	lifecycle LifecycleApplier,
	payments PaymentStore,
	notifs notifier.Notifier,
	clk clock.Clock,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		bookings:  bookings,
		lifecycle: lifecycle,
		payments:  payments,
		notifs:    notifs,
		clock:     clk,
		metrics:   m,
		logger:    logger.With().Str("component", "payment").Logger(),
	}
}

// RecordPayment applies a gateway status report against the booking's
// payment history. The gateway reports pending, paid and failed; refunds are
// issued by the settlement engine on cancellation, never by the gateway.
func (s *Service) RecordPayment(ctx context.Context, bookingID string, req RecordPaymentRequest) (*domain.Payment, error) {
	status := domain.PaymentStatus(req.Status)
	if !status.Valid() || status == domain.PaymentRefunded {
		return nil, ErrValidation
	}
	if req.Amount <= 0 {
		return nil, ErrValidation
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	var p *domain.Payment
	switch status {
	case domain.PaymentPending:
		p, err = s.recordPending(ctx, b, domain.Money(req.Amount))
	case domain.PaymentPaid:
		p, err = s.recordPaid(ctx, b, domain.Money(req.Amount))
	case domain.PaymentFailed:
		p, err = s.recordFailed(ctx, b, domain.Money(req.Amount), req.FailureReason)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentsRecorded.WithLabelValues(string(p.Status)).Inc()
	s.notifs.Publish(ctx, notifier.Event{
		Type:       notifier.TypePaymentRecorded,
		BookingID:  b.ID,
		PatientID:  b.PatientID,
		ProviderID: b.ProviderID,
		Status:     string(p.Status),
		Amount:     int64(p.Amount),
		OccurredAt: s.clock.Now(),
	})
	return p, nil
}

func (s *Service) recordPending(ctx context.Context, b *domain.Booking, amount domain.Money) (*domain.Payment, error) {
	// No payment may reference the booking before its price is frozen.
	if b.PriceSnapshot == nil {
		return nil, ErrNoPriceSnapshot
	}

	p := &domain.Payment{
		BookingID: b.ID,
		Amount:    amount,
		Status:    domain.PaymentPending,
		CreatedAt: s.clock.Now(),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrLivePaymentExists) {
			return nil, ErrDuplicateLivePayment
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) recordPaid(ctx context.Context, b *domain.Booking, amount domain.Money) (*domain.Payment, error) {
	if b.PriceSnapshot == nil {
		return nil, ErrNoPriceSnapshot
	}
	if amount.Cmp(*b.PriceSnapshot) != 0 {
		return nil, ErrAmountMismatch
	}

	now := s.clock.Now()

	live, err := s.payments.GetLiveByBooking(ctx, b.ID)
	switch {
	case err == nil && live.Status == domain.PaymentPaid:
		// Gateway retried a confirmation it already delivered.
		return live, nil

	case err == nil:
		// The pending row's figure was provisional; once paid, the amount
		// must equal the frozen price so refunds and revenue settle against
		// what was actually collected.
		live.Amount = amount
		live.Status = domain.PaymentPaid
		live.PaidAt = &now
		if err := s.payments.Update(ctx, live); err != nil {
			return nil, err
		}

	case errors.Is(err, repository.ErrNotFound):
		// Paid without a preceding pending report; the gateway collapsed the
		// two steps. Record the row directly.
		live = &domain.Payment{
			BookingID: b.ID,
			Amount:    amount,
			Status:    domain.PaymentPaid,
			PaidAt:    &now,
			CreatedAt: now,
		}
		if err := s.payments.Create(ctx, live); err != nil {
			if errors.Is(err, repository.ErrLivePaymentExists) {
				return nil, ErrDuplicateLivePayment
			}
			return nil, err
		}

	default:
		return nil, err
	}

	// Money has durably arrived; the lifecycle advance is best effort. A
	// booking cancelled between acceptance and confirmation leaves a paid
	// payment behind that the refund path or an operator resolves.
	if _, err := s.lifecycle.Transition(ctx, b.ID, domain.EventPaymentConfirmed, ""); err != nil {
		s.logger.Warn().Err(err).
			Str("booking_id", b.ID).
			Str("payment_id", live.ID).
			Msg("paid payment recorded but booking did not advance")
	}
	return live, nil
}

func (s *Service) recordFailed(ctx context.Context, b *domain.Booking, amount domain.Money, reason string) (*domain.Payment, error) {
	live, err := s.payments.GetLiveByBooking(ctx, b.ID)
	switch {
	case err == nil && live.Status == domain.PaymentPaid:
		// A settled charge cannot fail retroactively.
		return nil, ErrValidation

	case err == nil:
		live.Status = domain.PaymentFailed
		live.FailureReason = reason
		if err := s.payments.Update(ctx, live); err != nil {
			return nil, err
		}
		return live, nil

	case errors.Is(err, repository.ErrNotFound):
		p := &domain.Payment{
			BookingID:     b.ID,
			Amount:        amount,
			Status:        domain.PaymentFailed,
			FailureReason: reason,
			CreatedAt:     s.clock.Now(),
		}
		if err := s.payments.Create(ctx, p); err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, err
	}
}

// ListByBooking returns the booking's full payment history, failed attempts
// included.
func (s *Service) ListByBooking(ctx context.Context, bookingID string) ([]domain.Payment, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return s.payments.ListByBooking(ctx, bookingID)
}
