package booking

import (
	"context"
	"time"

	"telecare/internal/domain"
)

// BookingRepository is the persistence surface the service needs.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking, prevUpdatedAt time.Time) error
}

// AuditRepository records every applied status change.
type AuditRepository interface {
	Append(ctx context.Context, e *domain.AuditEvent) error
}

// SettlementEngine reacts to terminal transitions: payout on completion,
// refund on cancellation. Implemented by the settlement service.
type SettlementEngine interface {
	HandleCompletion(ctx context.Context, b *domain.Booking)
	HandleCancellation(ctx context.Context, b *domain.Booking) error
}
