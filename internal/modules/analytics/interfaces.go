package analytics

import (
	"context"
	"time"

	"telecare/internal/domain"
)

type BookingHistory interface {
	ListInWindow(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

type PaymentHistory interface {
	ListInWindow(ctx context.Context, from, to time.Time) ([]domain.Payment, error)
}

type AuditHistory interface {
	CountOverridesInWindow(ctx context.Context, from, to time.Time) (int64, error)
}
