package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"telecare/internal/domain"
	"telecare/internal/metrics"
	"telecare/internal/pkg/clock"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingHistory struct {
	mock.Mock
}

func (m *MockBookingHistory) ListInWindow(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockPaymentHistory struct {
	mock.Mock
}

func (m *MockPaymentHistory) ListInWindow(ctx context.Context, from, to time.Time) ([]domain.Payment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type MockAuditHistory struct {
	mock.Mock
}

func (m *MockAuditHistory) CountOverridesInWindow(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func testWindow() (time.Time, time.Time) {
	to := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return to.AddDate(0, 0, -30), to
}

func newAnalyticsService(t *testing.T, bookings *MockBookingHistory, payments *MockPaymentHistory, audit *MockAuditHistory, cache *redis.Client) *Service {
	t.Helper()
	return NewService(
		bookings, payments, audit,
		cache, time.Minute, time.UTC,
		clock.System(),
		metrics.New(prometheus.NewRegistry()),
		zerolog.Nop(),
	)
}

func TestAggregate_EmptyHistory(t *testing.T) {
	bookings := new(MockBookingHistory)
	payments := new(MockPaymentHistory)
	audit := new(MockAuditHistory)
	svc := newAnalyticsService(t, bookings, payments, audit, nil)

	from, to := testWindow()
	bookings.On("ListInWindow", mock.Anything, from, to).Return([]domain.Booking{}, nil)
	payments.On("ListInWindow", mock.Anything, from, to).Return([]domain.Payment{}, nil)
	audit.On("CountOverridesInWindow", mock.Anything, from, to).Return(int64(0), nil)

	snap := svc.Aggregate(context.Background(), from, to)

	assert.Equal(t, SystemHealth{}, snap.SystemHealth)
	assert.Empty(t, snap.UserGrowth)
	assert.Empty(t, snap.BookingTrends)
	assert.Empty(t, snap.RevenueData)
	assert.Empty(t, snap.ProviderPerformance)
	assert.Zero(t, snap.AdminOverrides)
}

func TestAggregate_DegradesOnStoreFailure(t *testing.T) {
	bookings := new(MockBookingHistory)
	payments := new(MockPaymentHistory)
	audit := new(MockAuditHistory)
	svc := newAnalyticsService(t, bookings, payments, audit, nil)

	from, to := testWindow()
	bookings.On("ListInWindow", mock.Anything, from, to).Return(nil, errors.New("connection reset"))
	payments.On("ListInWindow", mock.Anything, from, to).Return(nil, errors.New("connection reset"))
	audit.On("CountOverridesInWindow", mock.Anything, from, to).Return(int64(0), errors.New("connection reset"))

	// Never an error, only zeroed output.
	snap := svc.Aggregate(context.Background(), from, to)
	assert.Equal(t, SystemHealth{}, snap.SystemHealth)
}

func TestAggregate_ServesRepeatWindowFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	bookings := new(MockBookingHistory)
	payments := new(MockPaymentHistory)
	audit := new(MockAuditHistory)
	svc := newAnalyticsService(t, bookings, payments, audit, cache)

	from, to := testWindow()
	history := []domain.Booking{
		{ID: "bk-1", PatientID: "pat-1", ProviderID: "prov-1", Status: domain.BookingCompleted, CreatedAt: from.Add(time.Hour)},
	}
	bookings.On("ListInWindow", mock.Anything, from, to).Return(history, nil).Once()
	payments.On("ListInWindow", mock.Anything, from, to).Return([]domain.Payment{}, nil).Once()
	audit.On("CountOverridesInWindow", mock.Anything, from, to).Return(int64(2), nil).Once()

	first := svc.Aggregate(context.Background(), from, to)
	second := svc.Aggregate(context.Background(), from, to)

	assert.Equal(t, first.SystemHealth, second.SystemHealth)
	assert.Equal(t, int64(2), second.AdminOverrides)
	bookings.AssertExpectations(t)
	payments.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAggregate_CacheExpiryRecomputes(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	bookings := new(MockBookingHistory)
	payments := new(MockPaymentHistory)
	audit := new(MockAuditHistory)
	svc := newAnalyticsService(t, bookings, payments, audit, cache)

	from, to := testWindow()
	bookings.On("ListInWindow", mock.Anything, from, to).Return([]domain.Booking{}, nil).Twice()
	payments.On("ListInWindow", mock.Anything, from, to).Return([]domain.Payment{}, nil).Twice()
	audit.On("CountOverridesInWindow", mock.Anything, from, to).Return(int64(0), nil).Twice()

	svc.Aggregate(context.Background(), from, to)
	mr.FastForward(2 * time.Minute)
	svc.Aggregate(context.Background(), from, to)

	bookings.AssertExpectations(t)
}

func TestAggregate_CacheFailureFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close() // every cache call now errors

	bookings := new(MockBookingHistory)
	payments := new(MockPaymentHistory)
	audit := new(MockAuditHistory)
	svc := newAnalyticsService(t, bookings, payments, audit, cache)

	from, to := testWindow()
	bookings.On("ListInWindow", mock.Anything, from, to).Return([]domain.Booking{}, nil)
	payments.On("ListInWindow", mock.Anything, from, to).Return([]domain.Payment{}, nil)
	audit.On("CountOverridesInWindow", mock.Anything, from, to).Return(int64(0), nil)

	snap := svc.Aggregate(context.Background(), from, to)
	require.False(t, snap.GeneratedAt.IsZero(), "snapshot must be computed despite the dead cache")
	assert.Equal(t, SystemHealth{}, snap.SystemHealth)
}
