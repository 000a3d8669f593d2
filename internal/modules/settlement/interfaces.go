package settlement

import (
	"context"
	"time"

	"telecare/internal/domain"
)

type BookingReader interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
}

type PaymentStore interface {
	GetLiveByBooking(ctx context.Context, bookingID string) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
}

type EscrowStore interface {
	Create(ctx context.Context, e *domain.EscrowRelease) error
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.EscrowRelease, error)
	MarkReleased(ctx context.Context, paymentID string, releasedAt time.Time) (changed bool, err error)
	MarkCancelled(ctx context.Context, paymentID string) (changed bool, err error)
	ListDue(ctx context.Context, asOf time.Time) ([]domain.EscrowRelease, error)
}
