package booking

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
	bookings BookingRepository
	audit    AuditRepository
	settle   SettlementEngine
	notifs   notifier.Notifier
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	locks    *bookingLocks
}

func NewService(
	bookings BookingRepository,
	audit AuditRepository,
	settle SettlementEngine,
	notifs notifier.Notifier,
	clk clock.Clock,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		bookings: bookings,
		audit:    audit,
		settle:   settle,
		notifs:   notifs,
		clock:    clk,
		metrics:  m,
		logger:   logger.With().Str("component", "booking").Logger(),
		locks:    newBookingLocks(),
	}
}

// CreateBooking registers a consultation request on behalf of the scheduling
// collaborator. New bookings always start in requested status.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if !domain.ConsultationMode(req.Mode).Valid() {
		return nil, ErrValidation
	}
	if req.ConsultationFee <= 0 {
		return nil, ErrValidation
	}
	if !req.ConsentGranted {
		return nil, ErrValidation
	}

	b := &domain.Booking{
		PatientID:       req.PatientID,
		ProviderID:      req.ProviderID,
		ScheduledAt:     req.ScheduledAt,
		Mode:            domain.ConsultationMode(req.Mode),
		Reason:          req.Reason,
		ConsentGranted:  req.ConsentGranted,
		ConsultationFee: domain.Money(req.ConsultationFee),
		Status:          domain.BookingRequested,
		CreatedAt:       s.clock.Now(),
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	s.notifs.Publish(ctx, notifier.Event{
		Type:       notifier.TypeBookingCreated,
		BookingID:  b.ID,
		PatientID:  b.PatientID,
		ProviderID: b.ProviderID,
		Status:     string(b.Status),
		OccurredAt: b.CreatedAt,
	})
	return b, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Transition applies a lifecycle event against the legality table. Requests
// for the same booking are serialized on a per-booking lock so legality is
// always evaluated against the latest state. A retried event whose target
// status already holds is a no-op success. reason is only consulted for
// cancellation.
func (s *Service) Transition(ctx context.Context, bookingID string, event domain.BookingEvent, reason string) (*domain.Booking, error) {
	if !event.Valid() {
		return nil, ErrValidation
	}

	unlock := s.locks.lock(bookingID)
	defer unlock()

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	next, changed, legal := domain.NextStatus(b.Status, event)
	if !legal {
		s.metrics.TransitionsRejected.Inc()
		return nil, ErrIllegalTransition
	}
	if !changed {
		return b, nil
	}

	prev := b.Status
	prevUpdatedAt := b.UpdatedAt
	now := s.clock.Now()

	b.Status = next
	switch event {
	case domain.EventProviderAccepted, domain.EventPaymentConfirmed:
		// The snapshot must exist before any payment references the booking,
		// so it freezes the moment the provider accepts; payment confirmation
		// re-freezes defensively but can never change an existing snapshot.
		b.FreezePrice()
	case domain.EventCancellationRequested:
		b.CancellationReason = reason
		b.CancelledAt = &now
	}

	if err := s.bookings.Update(ctx, b, prevUpdatedAt); err != nil {
		if errors.Is(err, repository.ErrStaleBooking) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}

	s.recordTransition(ctx, b, prev, event)

	switch next {
	case domain.BookingCompleted:
		s.settle.HandleCompletion(ctx, b)
	case domain.BookingCancelled:
		if err := s.settle.HandleCancellation(ctx, b); err != nil {
			s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("refund on cancellation failed")
		}
	}

	return b, nil
}

// ForceStatus is the admin override path: any status from any status, note
// mandatory, recorded as a distinct audit event kind.
func (s *Service) ForceStatus(ctx context.Context, bookingID string, status domain.BookingStatus, note, operatorID string) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, ErrValidation
	}
	if note == "" {
		return nil, ErrNoteRequired
	}

	unlock := s.locks.lock(bookingID)
	defer unlock()

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	prev := b.Status
	prevUpdatedAt := b.UpdatedAt

	b.Status = status
	switch status {
	case domain.BookingConfirmed, domain.BookingInProgress, domain.BookingCompleted:
		// A forced post-confirmation status must carry a frozen price, or
		// every downstream settlement path would fail closed on it.
		b.FreezePrice()
	case domain.BookingCancelled:
		if b.CancelledAt == nil {
			now := s.clock.Now()
			b.CancelledAt = &now
			b.CancellationReason = note
		}
	}

	if err := s.bookings.Update(ctx, b, prevUpdatedAt); err != nil {
		if errors.Is(err, repository.ErrStaleBooking) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}

	s.metrics.AdminOverrides.Inc()
	audit := &domain.AuditEvent{
		BookingID:  b.ID,
		Kind:       domain.AuditAdminOverride,
		FromStatus: prev,
		ToStatus:   status,
		OperatorID: operatorID,
		Note:       note,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.audit.Append(ctx, audit); err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("failed to append override audit event")
	}

	s.notifs.Publish(ctx, notifier.Event{
		Type:       notifier.TypeAdminOverride,
		BookingID:  b.ID,
		Status:     string(status),
		Note:       note,
		OccurredAt: s.clock.Now(),
	})
	s.logger.Warn().
		Str("booking_id", b.ID).
		Str("operator_id", operatorID).
		Str("from", string(prev)).
		Str("to", string(status)).
		Msg("admin override applied")

	return b, nil
}

func (s *Service) recordTransition(ctx context.Context, b *domain.Booking, prev domain.BookingStatus, event domain.BookingEvent) {
	s.metrics.TransitionsApplied.WithLabelValues(string(event)).Inc()

	audit := &domain.AuditEvent{
		BookingID:  b.ID,
		Kind:       domain.AuditLifecycle,
		FromStatus: prev,
		ToStatus:   b.Status,
		Event:      event,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.audit.Append(ctx, audit); err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("failed to append audit event")
	}

	s.notifs.Publish(ctx, notifier.StatusChanged(b, s.clock.Now()))
	s.logger.Info().
		Str("booking_id", b.ID).
		Str("event", string(event)).
		Str("from", string(prev)).
		Str("to", string(b.Status)).
		Msg("booking transition applied")
}
