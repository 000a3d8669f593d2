package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"telecare/internal/config"
	"telecare/internal/database"
	"telecare/internal/logging"
	"telecare/internal/metrics"
	"telecare/internal/middleware"
	"telecare/internal/modules/admin"
	"telecare/internal/modules/analytics"
	"telecare/internal/modules/booking"
	"telecare/internal/modules/payment"
	"telecare/internal/modules/settlement"
	"telecare/internal/notifier"
	"telecare/internal/pkg/clock"
	"telecare/internal/repository"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging, cfg.App)

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}

	var notifs notifier.Notifier = notifier.Noop{}
	if cfg.Kafka.Enabled {
		notifs = notifier.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka notifier enabled")
	}
	defer notifs.Close()

	var analyticsCache *redis.Client
	if cfg.Redis.Enabled {
		analyticsCache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer analyticsCache.Close()
		logger.Info().Str("address", cfg.Redis.Address).Msg("analytics cache enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	escrowRepo := repository.NewEscrowRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	clk := clock.System()

	settlementService := settlement.NewService(
		bookingRepo, paymentRepo, escrowRepo,
		cfg.FeeSchedule, clk, notifs, m, logger,
	)
	bookingService := booking.NewService(
		bookingRepo, auditRepo, settlementService,
		notifs, clk, m, logger,
	)
	paymentService := payment.NewService(
		bookingRepo, bookingService, paymentRepo,
		notifs, clk, m, logger,
	)
	analyticsService := analytics.NewService(
		bookingRepo, paymentRepo, auditRepo,
		analyticsCache, cfg.Analytics.CacheTTL, nil,
		clk, m, logger,
	)
	adminService := admin.NewService(bookingService, auditRepo, logger)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	if cfg.HTTP.CORSEnabled {
		r.Use(middleware.CORS())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		booking.NewHandler(bookingService).RegisterRoutes(v1)
		payment.NewHandler(paymentService).RegisterRoutes(v1)
		settlement.NewHandler(settlementService).RegisterRoutes(v1)
		analytics.NewHandler(analyticsService).RegisterRoutes(v1)

		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.AdminTokenAuth(cfg.Admin.Token))
		{
			admin.NewHandler(adminService).RegisterRoutes(adminGroup)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Int("port", cfg.HTTP.Port).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
