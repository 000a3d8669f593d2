package payment

import (
	"context"

	"telecare/internal/domain"
)

type BookingReader interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
}

// LifecycleApplier feeds the payment-confirmed event back into the booking
// state machine. Implemented by the booking service; the indirection keeps
// this package from holding the booking lock itself.
type LifecycleApplier interface {
	Transition(ctx context.Context, bookingID string, event domain.BookingEvent, reason string) (*domain.Booking, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetLiveByBooking(ctx context.Context, bookingID string) (*domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID string) ([]domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
}
