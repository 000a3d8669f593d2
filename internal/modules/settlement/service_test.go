package settlement

import (
	"context"
	"testing"
	"time"

	"telecare/internal/domain"
	"telecare/internal/metrics"
	"telecare/internal/notifier"
	"telecare/internal/pkg/clock"
	"telecare/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingReader struct {
	mock.Mock
}

func (m *MockBookingReader) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) GetLiveByBooking(ctx context.Context, bookingID string) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentStore) Update(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockEscrowStore struct {
	mock.Mock
}

func (m *MockEscrowStore) Create(ctx context.Context, e *domain.EscrowRelease) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEscrowStore) GetByPaymentID(ctx context.Context, paymentID string) (*domain.EscrowRelease, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EscrowRelease), args.Error(1)
}

func (m *MockEscrowStore) MarkReleased(ctx context.Context, paymentID string, releasedAt time.Time) (bool, error) {
	args := m.Called(ctx, paymentID, releasedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockEscrowStore) MarkCancelled(ctx context.Context, paymentID string) (bool, error) {
	args := m.Called(ctx, paymentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEscrowStore) ListDue(ctx context.Context, asOf time.Time) ([]domain.EscrowRelease, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EscrowRelease), args.Error(1)
}

func testFees() domain.FeeSchedule {
	return domain.FeeSchedule{
		CommissionRatePercent: 10,
		BookingFee:            500,
		CancellationFee:       1000,
		EscrowHoldDays:        7,
		AutoReleaseEscrow:     true,
	}
}

func newTestService(bookings *MockBookingReader, payments *MockPaymentStore, escrow *MockEscrowStore, clk clock.Clock) *Service {
	return NewService(
		bookings, payments, escrow,
		testFees(),
		clk,
		notifier.Noop{},
		metrics.New(prometheus.NewRegistry()),
		zerolog.Nop(),
	)
}

func confirmedBooking(fee domain.Money) *domain.Booking {
	b := &domain.Booking{
		ID:              "bk-1",
		PatientID:       "pat-1",
		ProviderID:      "prov-1",
		ConsultationFee: fee,
		Status:          domain.BookingConfirmed,
	}
	b.FreezePrice()
	return b
}

func TestComputePayout_SplitsGross(t *testing.T) {
	// 10,000 gross, 10% commission, 500 flat fee -> 8,500 payout
	record, err := ComputePayout(confirmedBooking(10000), testFees())
	require.NoError(t, err)

	assert.Equal(t, domain.Money(10000), record.GrossAmount)
	assert.Equal(t, domain.Money(1000), record.PlatformCommission)
	assert.Equal(t, domain.Money(500), record.BookingFee)
	assert.Equal(t, domain.Money(8500), record.ProviderPayout)
	assert.Equal(t, record.GrossAmount, record.PlatformCommission.Add(record.BookingFee).Add(record.ProviderPayout))
}

func TestComputePayout_FailsClosedOnNegative(t *testing.T) {
	fees := testFees()
	fees.BookingFee = 9500 // 1,000 commission + 9,500 fee > 10,000 gross

	_, err := ComputePayout(confirmedBooking(10000), fees)
	assert.ErrorIs(t, err, ErrNegativeSettlement)
}

func TestComputePayout_RequiresPriceSnapshot(t *testing.T) {
	b := &domain.Booking{ID: "bk-1", ConsultationFee: 10000, Status: domain.BookingRequested}

	_, err := ComputePayout(b, testFees())
	assert.ErrorIs(t, err, ErrMissingPriceSnapshot)
}

func TestRefundAmount_DeductsCancellationFee(t *testing.T) {
	p := &domain.Payment{Amount: 5000, Status: domain.PaymentPaid}
	assert.Equal(t, domain.Money(4000), RefundAmount(p, testFees()))
}

func TestRefundAmount_FlooredAtZero(t *testing.T) {
	p := &domain.Payment{Amount: 500, Status: domain.PaymentPaid}
	assert.Equal(t, domain.Money(0), RefundAmount(p, testFees()))
}

func TestReleaseAt_AddsHoldDays(t *testing.T) {
	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &domain.Payment{Status: domain.PaymentPaid, PaidAt: &paidAt}

	got, err := ReleaseAt(p, testFees())
	require.NoError(t, err)
	assert.Equal(t, paidAt.AddDate(0, 0, 7), got)
}

func TestReleaseAt_RejectsUnpaidPayment(t *testing.T) {
	p := &domain.Payment{Status: domain.PaymentPending}
	_, err := ReleaseAt(p, testFees())
	assert.ErrorIs(t, err, ErrPaymentNotPaid)
}

func TestScheduleEscrowRelease_CreatesHold(t *testing.T) {
	bookings := new(MockBookingReader)
	payments := new(MockPaymentStore)
	escrow := new(MockEscrowStore)

	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	payment := &domain.Payment{ID: "pay-1", BookingID: "bk-1", Amount: 10000, Status: domain.PaymentPaid, PaidAt: &paidAt}

	bookings.On("GetByID", mock.Anything, "bk-1").Return(confirmedBooking(10000), nil)
	escrow.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.EscrowRelease) bool {
		return e.PaymentID == "pay-1" &&
			e.Amount == domain.Money(8500) &&
			e.ReleaseDue.Equal(paidAt.AddDate(0, 0, 7))
	})).Return(nil)

	svc := newTestService(bookings, payments, escrow, &clock.Fixed{Instant: paidAt})

	hold, err := svc.ScheduleEscrowRelease(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(8500), hold.Amount)
	escrow.AssertExpectations(t)
}

func TestScheduleEscrowRelease_SecondCallReturnsExisting(t *testing.T) {
	bookings := new(MockBookingReader)
	payments := new(MockPaymentStore)
	escrow := new(MockEscrowStore)

	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	payment := &domain.Payment{ID: "pay-1", BookingID: "bk-1", Amount: 10000, Status: domain.PaymentPaid, PaidAt: &paidAt}
	existing := &domain.EscrowRelease{ID: "esc-1", PaymentID: "pay-1", Amount: 8500}

	bookings.On("GetByID", mock.Anything, "bk-1").Return(confirmedBooking(10000), nil)
	escrow.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEscrowExists)
	escrow.On("GetByPaymentID", mock.Anything, "pay-1").Return(existing, nil)

	svc := newTestService(bookings, payments, escrow, &clock.Fixed{Instant: paidAt})

	hold, err := svc.ScheduleEscrowRelease(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, "esc-1", hold.ID)
}

func TestReleaseEscrow_AtMostOnce(t *testing.T) {
	bookings := new(MockBookingReader)
	payments := new(MockPaymentStore)
	escrow := new(MockEscrowStore)

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	releasedAt := now
	hold := &domain.EscrowRelease{ID: "esc-1", PaymentID: "pay-1", BookingID: "bk-1", Amount: 8500, Released: true, ReleasedAt: &releasedAt}

	// First invocation flips the flag, the second matches zero rows.
	escrow.On("MarkReleased", mock.Anything, "pay-1", now).Return(true, nil).Once()
	escrow.On("MarkReleased", mock.Anything, "pay-1", now).Return(false, nil).Once()
	escrow.On("GetByPaymentID", mock.Anything, "pay-1").Return(hold, nil)

	svc := newTestService(bookings, payments, escrow, &clock.Fixed{Instant: now})

	first, err := svc.ReleaseEscrow(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.True(t, first.Released)

	second, err := svc.ReleaseEscrow(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.True(t, second.Released)

	escrow.AssertExpectations(t)
}

func TestHandleCancellation_RefundsPaidPayment(t *testing.T) {
	bookings := new(MockBookingReader)
	payments := new(MockPaymentStore)
	escrow := new(MockEscrowStore)

	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	payment := &domain.Payment{ID: "pay-1", BookingID: "bk-1", Amount: 5000, Status: domain.PaymentPaid, PaidAt: &paidAt}

	payments.On("GetLiveByBooking", mock.Anything, "bk-1").Return(payment, nil)
	payments.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentRefunded &&
			p.RefundAmount != nil && *p.RefundAmount == domain.Money(4000)
	})).Return(nil)
	escrow.On("MarkCancelled", mock.Anything, "pay-1").Return(true, nil)

	svc := newTestService(bookings, payments, escrow, &clock.Fixed{Instant: paidAt})

	b := confirmedBooking(5000)
	b.Status = domain.BookingCancelled

	require.NoError(t, svc.HandleCancellation(context.Background(), b))
	payments.AssertExpectations(t)
	escrow.AssertExpectations(t)
}

func TestHandleCancellation_PendingPaymentFails(t *testing.T) {
	bookings := new(MockBookingReader)
	payments := new(MockPaymentStore)
	escrow := new(MockEscrowStore)

	payment := &domain.Payment{ID: "pay-1", BookingID: "bk-1", Amount: 5000, Status: domain.PaymentPending}

	payments.On("GetLiveByBooking", mock.Anything, "bk-1").Return(payment, nil)
	payments.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentFailed && p.FailureReason == "booking cancelled"
	})).Return(nil)

	svc := newTestService(bookings, payments, escrow, clock.System())

	b := confirmedBooking(5000)
	b.Status = domain.BookingCancelled

	require.NoError(t, svc.HandleCancellation(context.Background(), b))
	payments.AssertExpectations(t)
}

func TestHandleCancellation_NoLivePaymentIsNoOp(t *testing.T) {
	bookings := new(MockBookingReader)
	payments := new(MockPaymentStore)
	escrow := new(MockEscrowStore)

	payments.On("GetLiveByBooking", mock.Anything, "bk-1").Return(nil, repository.ErrNotFound)

	svc := newTestService(bookings, payments, escrow, clock.System())

	b := confirmedBooking(5000)
	b.Status = domain.BookingCancelled

	require.NoError(t, svc.HandleCancellation(context.Background(), b))
}

func TestReleaseDue_SweepsEveryDueHold(t *testing.T) {
	bookings := new(MockBookingReader)
	payments := new(MockPaymentStore)
	escrow := new(MockEscrowStore)

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	due := []domain.EscrowRelease{
		{ID: "esc-1", PaymentID: "pay-1", BookingID: "bk-1", Amount: 8500},
		{ID: "esc-2", PaymentID: "pay-2", BookingID: "bk-2", Amount: 4250},
	}

	escrow.On("ListDue", mock.Anything, now).Return(due, nil)
	escrow.On("MarkReleased", mock.Anything, "pay-1", now).Return(true, nil)
	escrow.On("MarkReleased", mock.Anything, "pay-2", now).Return(true, nil)
	escrow.On("GetByPaymentID", mock.Anything, "pay-1").Return(&due[0], nil)
	escrow.On("GetByPaymentID", mock.Anything, "pay-2").Return(&due[1], nil)

	svc := newTestService(bookings, payments, escrow, &clock.Fixed{Instant: now})

	released, err := svc.ReleaseDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, released)
}
