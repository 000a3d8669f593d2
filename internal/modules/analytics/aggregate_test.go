package analytics

import (
	"fmt"
	"testing"
	"time"

	"telecare/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func paidPayment(bookingID string, amount domain.Money, paidAt time.Time) domain.Payment {
	return domain.Payment{
		BookingID: bookingID,
		Amount:    amount,
		Status:    domain.PaymentPaid,
		PaidAt:    &paidAt,
	}
}

func TestUserGrowth_CountsFirstBookingPerPatient(t *testing.T) {
	bookings := []domain.Booking{
		{PatientID: "pat-1", CreatedAt: day(1, 9)},
		{PatientID: "pat-1", CreatedAt: day(3, 9)}, // returning, not growth
		{PatientID: "pat-2", CreatedAt: day(1, 15)},
		{PatientID: "pat-3", CreatedAt: day(3, 10)},
	}

	got := userGrowth(bookings, time.UTC)
	assert.Equal(t, []TrendPoint{
		{Date: "2026-03-01", Count: 2},
		{Date: "2026-03-03", Count: 1},
	}, got)
}

func TestBookingTrends_SparseDates(t *testing.T) {
	bookings := []domain.Booking{
		{PatientID: "pat-1", CreatedAt: day(1, 9)},
		{PatientID: "pat-2", CreatedAt: day(1, 15)},
		{PatientID: "pat-3", CreatedAt: day(5, 10)},
	}

	got := bookingTrends(bookings, time.UTC)
	require.Len(t, got, 2, "dates with no activity must be omitted, not zero filled")
	assert.Equal(t, TrendPoint{Date: "2026-03-01", Count: 2}, got[0])
	assert.Equal(t, TrendPoint{Date: "2026-03-05", Count: 1}, got[1])
}

func TestRevenueData_PaidOnly(t *testing.T) {
	payments := []domain.Payment{
		paidPayment("bk-1", 10000, day(1, 12)),
		paidPayment("bk-2", 5000, day(1, 18)),
		{BookingID: "bk-3", Amount: 7000, Status: domain.PaymentFailed},
		{BookingID: "bk-4", Amount: 7000, Status: domain.PaymentRefunded},
	}

	got := revenueData(payments, time.UTC)
	assert.Equal(t, []RevenuePoint{
		{Date: "2026-03-01", Revenue: 15000},
	}, got)
}

func TestProviderPerformance_RankingAndRating(t *testing.T) {
	bookings := []domain.Booking{
		{ID: "bk-1", ProviderID: "prov-a", Status: domain.BookingCompleted},
		{ID: "bk-2", ProviderID: "prov-a", Status: domain.BookingCancelled},
		{ID: "bk-3", ProviderID: "prov-b", Status: domain.BookingCompleted},
	}
	payments := []domain.Payment{
		paidPayment("bk-1", 5000, day(1, 12)),
		paidPayment("bk-3", 20000, day(2, 12)),
	}

	got := providerPerformance(bookings, payments)
	require.Len(t, got, 2)

	assert.Equal(t, "prov-b", got[0].ProviderID)
	assert.Equal(t, domain.Money(20000), got[0].Revenue)
	assert.Equal(t, 5.0, got[0].Rating)

	assert.Equal(t, "prov-a", got[1].ProviderID)
	assert.Equal(t, 2, got[1].TotalBookings)
	assert.Equal(t, 1, got[1].CompletedBookings)
	assert.Equal(t, 2.5, got[1].Rating)
}

func TestProviderPerformance_TopTenWithDeterministicTies(t *testing.T) {
	var bookings []domain.Booking
	var payments []domain.Payment
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("bk-%02d", i)
		bookings = append(bookings, domain.Booking{
			ID:         id,
			ProviderID: fmt.Sprintf("prov-%02d", i),
			Status:     domain.BookingCompleted,
		})
		// Identical revenue everywhere forces the id tiebreak.
		payments = append(payments, paidPayment(id, 1000, day(1, 12)))
	}

	got := providerPerformance(bookings, payments)
	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].ProviderID, got[i].ProviderID)
	}
}

func TestSystemHealth_Rates(t *testing.T) {
	bookings := []domain.Booking{
		{ID: "bk-1", Status: domain.BookingCompleted},
		{ID: "bk-2", Status: domain.BookingCompleted},
		{ID: "bk-3", Status: domain.BookingCancelled},
	}
	payments := []domain.Payment{
		paidPayment("bk-1", 10000, day(1, 12)),
		paidPayment("bk-2", 5000, day(2, 12)),
		{BookingID: "bk-3", Amount: 5000, Status: domain.PaymentFailed},
	}

	h := systemHealth(bookings, payments)
	assert.Equal(t, 3, h.TotalBookings)
	assert.Equal(t, 2, h.CompletedBookings)
	assert.Equal(t, 3, h.TotalPayments)
	assert.Equal(t, 66.67, h.CompletionRate)
	assert.Equal(t, 66.67, h.PaymentSuccessRate)
	assert.Equal(t, domain.Money(7500), h.AverageBookingValue)
}

func TestSystemHealth_EmptyHistoryIsAllZero(t *testing.T) {
	h := systemHealth(nil, nil)
	assert.Equal(t, SystemHealth{}, h)
}

func TestAverageBookingValue_RoundsHalfUp(t *testing.T) {
	payments := []domain.Payment{
		paidPayment("bk-1", 100, day(1, 12)),
		paidPayment("bk-2", 101, day(1, 13)),
	}
	h := systemHealth(nil, payments)
	assert.Equal(t, domain.Money(101), h.AverageBookingValue, "100.5 rounds up")
}
