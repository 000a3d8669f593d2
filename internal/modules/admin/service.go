// Package admin is the operator surface: the only mutation path allowed
// outside the booking state machine, plus the audit trail that makes those
// mutations accountable.
package admin

import (
	"context"

	"telecare/internal/domain"

	"github.com/rs/zerolog"
)

type Service struct {
	bookings BookingOverrider
	audit    AuditReader
	logger   zerolog.Logger
}

func NewService(bookings BookingOverrider, audit AuditReader, logger zerolog.Logger) *Service {
	return &Service{
		bookings: bookings,
		audit:    audit,
		logger:   logger.With().Str("component", "admin").Logger(),
	}
}

// Override forces a booking into any status, bypassing the legality table.
// The note is mandatory and every call is audited under its own event kind.
func (s *Service) Override(ctx context.Context, bookingID string, status domain.BookingStatus, note, operatorID string) (*domain.Booking, error) {
	return s.bookings.ForceStatus(ctx, bookingID, status, note, operatorID)
}

// AuditTrail returns the booking's full status history in order, lifecycle
// and operator-forced events together.
func (s *Service) AuditTrail(ctx context.Context, bookingID string) ([]domain.AuditEvent, error) {
	return s.audit.ListByBooking(ctx, bookingID)
}
