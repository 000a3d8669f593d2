package analytics

import (
	"math"
	"sort"
	"time"

	"telecare/internal/domain"
)

const dateLayout = "2006-01-02"

const leaderboardSize = 10

// userGrowth buckets distinct patients by the date of their first booking in
// the window. A patient returning on a later date counts once.
func userGrowth(bookings []domain.Booking, loc *time.Location) []TrendPoint {
	firstSeen := make(map[string]string)
	for _, b := range bookings {
		date := b.CreatedAt.In(loc).Format(dateLayout)
		if prev, ok := firstSeen[b.PatientID]; !ok || date < prev {
			firstSeen[b.PatientID] = date
		}
	}

	counts := make(map[string]int)
	for _, date := range firstSeen {
		counts[date]++
	}
	return sortedTrend(counts)
}

func bookingTrends(bookings []domain.Booking, loc *time.Location) []TrendPoint {
	counts := make(map[string]int)
	for _, b := range bookings {
		counts[b.CreatedAt.In(loc).Format(dateLayout)]++
	}
	return sortedTrend(counts)
}

// revenueData sums paid amounts by the date payment landed. Refunded and
// failed payments never contribute.
func revenueData(payments []domain.Payment, loc *time.Location) []RevenuePoint {
	sums := make(map[string]domain.Money)
	for _, p := range payments {
		if p.Status != domain.PaymentPaid || p.PaidAt == nil {
			continue
		}
		sums[p.PaidAt.In(loc).Format(dateLayout)] += p.Amount
	}

	out := make([]RevenuePoint, 0, len(sums))
	for date, revenue := range sums {
		out = append(out, RevenuePoint{Date: date, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// providerPerformance ranks providers by paid revenue, descending, provider
// id ascending on ties, truncated to the top ten. Rating is the completion
// ratio scaled to a five point scale.
func providerPerformance(bookings []domain.Booking, payments []domain.Payment) []ProviderStats {
	byProvider := make(map[string]*ProviderStats)
	bookingProvider := make(map[string]string)

	for _, b := range bookings {
		stats, ok := byProvider[b.ProviderID]
		if !ok {
			stats = &ProviderStats{ProviderID: b.ProviderID}
			byProvider[b.ProviderID] = stats
		}
		stats.TotalBookings++
		if b.Status == domain.BookingCompleted {
			stats.CompletedBookings++
		}
		bookingProvider[b.ID] = b.ProviderID
	}

	for _, p := range payments {
		if p.Status != domain.PaymentPaid {
			continue
		}
		providerID, ok := bookingProvider[p.BookingID]
		if !ok {
			continue
		}
		byProvider[providerID].Revenue += p.Amount
	}

	out := make([]ProviderStats, 0, len(byProvider))
	for _, stats := range byProvider {
		if stats.TotalBookings > 0 {
			stats.Rating = round2(float64(stats.CompletedBookings) / float64(stats.TotalBookings) * 5)
		}
		out = append(out, *stats)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProviderID < out[j].ProviderID
	})
	if len(out) > leaderboardSize {
		out = out[:leaderboardSize]
	}
	return out
}

// systemHealth tolerates empty input: every rate is zero when its
// denominator is, never a division by zero.
func systemHealth(bookings []domain.Booking, payments []domain.Payment) SystemHealth {
	h := SystemHealth{
		TotalBookings: len(bookings),
		TotalPayments: len(payments),
	}

	for _, b := range bookings {
		if b.Status == domain.BookingCompleted {
			h.CompletedBookings++
		}
	}

	var paidCount int
	var paidSum domain.Money
	for _, p := range payments {
		if p.Status == domain.PaymentPaid {
			paidCount++
			paidSum += p.Amount
		}
	}

	if h.TotalBookings > 0 {
		h.CompletionRate = round2(float64(h.CompletedBookings) / float64(h.TotalBookings) * 100)
	}
	if h.TotalPayments > 0 {
		h.PaymentSuccessRate = round2(float64(paidCount) / float64(h.TotalPayments) * 100)
	}
	if paidCount > 0 {
		// Integer mean with round-half-up; amounts are non-negative here.
		h.AverageBookingValue = (paidSum + domain.Money(paidCount)/2) / domain.Money(paidCount)
	}
	return h
}

func sortedTrend(counts map[string]int) []TrendPoint {
	out := make([]TrendPoint, 0, len(counts))
	for date, count := range counts {
		out = append(out, TrendPoint{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
