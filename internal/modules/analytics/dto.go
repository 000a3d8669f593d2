package analytics

import (
	"time"

	"telecare/internal/domain"
)

// TrendPoint is one calendar date with activity. Dates with zero activity
// are omitted; consumers needing a dense series fill the gaps themselves.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type RevenuePoint struct {
	Date    string       `json:"date"`
	Revenue domain.Money `json:"revenue"`
}

type ProviderStats struct {
	ProviderID        string       `json:"provider_id"`
	TotalBookings     int          `json:"total_bookings"`
	CompletedBookings int          `json:"completed_bookings"`
	Revenue           domain.Money `json:"revenue"`
	Rating            float64      `json:"rating"`
}

type SystemHealth struct {
	TotalBookings       int          `json:"total_bookings"`
	CompletedBookings   int          `json:"completed_bookings"`
	TotalPayments       int          `json:"total_payments"`
	CompletionRate      float64      `json:"completion_rate"`
	PaymentSuccessRate  float64      `json:"payment_success_rate"`
	AverageBookingValue domain.Money `json:"average_booking_value"`
}

// Snapshot is the full analytics view for one window. It is derived data:
// safe to cache, safe to discard, recomputable at will.
type Snapshot struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	UserGrowth          []TrendPoint    `json:"user_growth"`
	BookingTrends       []TrendPoint    `json:"booking_trends"`
	RevenueData         []RevenuePoint  `json:"revenue_data"`
	ProviderPerformance []ProviderStats `json:"provider_performance"`
	SystemHealth        SystemHealth    `json:"system_health"`
	AdminOverrides      int64           `json:"admin_overrides"`

	GeneratedAt time.Time `json:"generated_at"`
}
