package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telecare/internal/metrics"
	"telecare/internal/pkg/clock"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Service derives dashboard views from booking and payment history. It is
// strictly read-only and it never returns an error: a broken dashboard must
// not be able to take down booking processing, so every failure degrades to
// zeroed output plus a warning log.
type Service struct {
	bookings BookingHistory
	payments PaymentHistory
	audit    AuditHistory
	cache    *redis.Client
	cacheTTL time.Duration
	loc      *time.Location
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewService wires the aggregator. cache may be nil when Redis is disabled;
// loc may be nil to bucket dates in the server's local time zone.
func NewService(
	bookings BookingHistory,
	payments PaymentHistory,
	audit AuditHistory,
	cache *redis.Client,
	cacheTTL time.Duration,
	loc *time.Location,
	clk clock.Clock,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		bookings: bookings,
		payments: payments,
		audit:    audit,
		cache:    cache,
		cacheTTL: cacheTTL,
		loc:      loc,
		clock:    clk,
		metrics:  m,
		logger:   logger.With().Str("component", "analytics").Logger(),
	}
}

// Aggregate computes the snapshot for [from, to). Dashboards poll
// aggressively, so identical windows are served from a short-lived Redis
// cache when one is configured.
func (s *Service) Aggregate(ctx context.Context, from, to time.Time) Snapshot {
	key := cacheKey(from, to)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached
	}

	started := s.clock.Now()
	snap := s.compute(ctx, from, to)
	s.metrics.AggregationDuration.Observe(s.clock.Now().Sub(started).Seconds())

	s.cacheSet(ctx, key, snap)
	return snap
}

func (s *Service) compute(ctx context.Context, from, to time.Time) Snapshot {
	bookings, err := s.bookings.ListInWindow(ctx, from, to)
	if err != nil {
		s.logger.Warn().Err(err).Msg("booking history unavailable, degrading to empty window")
		bookings = nil
	}

	payments, err := s.payments.ListInWindow(ctx, from, to)
	if err != nil {
		s.logger.Warn().Err(err).Msg("payment history unavailable, degrading to empty window")
		payments = nil
	}

	overrides, err := s.audit.CountOverridesInWindow(ctx, from, to)
	if err != nil {
		s.logger.Warn().Err(err).Msg("audit history unavailable, override count degrades to zero")
		overrides = 0
	}

	return Snapshot{
		From:                from,
		To:                  to,
		UserGrowth:          userGrowth(bookings, s.loc),
		BookingTrends:       bookingTrends(bookings, s.loc),
		RevenueData:         revenueData(payments, s.loc),
		ProviderPerformance: providerPerformance(bookings, payments),
		SystemHealth:        systemHealth(bookings, payments),
		AdminOverrides:      overrides,
		GeneratedAt:         s.clock.Now(),
	}
}

func cacheKey(from, to time.Time) string {
	return fmt.Sprintf("analytics:%d:%d", from.Unix(), to.Unix())
}

func (s *Service) cacheGet(ctx context.Context, key string) (Snapshot, bool) {
	if s.cache == nil {
		return Snapshot{}, false
	}

	raw, err := s.cache.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		s.metrics.AnalyticsCacheHits.WithLabelValues("miss").Inc()
		return Snapshot{}, false
	case err != nil:
		s.metrics.AnalyticsCacheHits.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg("analytics cache read failed")
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.metrics.AnalyticsCacheHits.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg("analytics cache entry corrupt, recomputing")
		return Snapshot{}, false
	}

	s.metrics.AnalyticsCacheHits.WithLabelValues("hit").Inc()
	return snap, true
}

func (s *Service) cacheSet(ctx context.Context, key string, snap Snapshot) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn().Err(err).Msg("analytics snapshot not cacheable")
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("analytics cache write failed")
	}
}
