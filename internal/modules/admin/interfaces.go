package admin

import (
	"context"

	"telecare/internal/domain"
)

// BookingOverrider is the forced-status path on the booking service.
type BookingOverrider interface {
	ForceStatus(ctx context.Context, bookingID string, status domain.BookingStatus, note, operatorID string) (*domain.Booking, error)
}

type AuditReader interface {
	ListByBooking(ctx context.Context, bookingID string) ([]domain.AuditEvent, error)
}
