// escrowd sweeps due escrow holds and releases them to providers. It runs
// separately from the API so a stuck sweep can never slow down booking
// traffic; the conditional release update keeps concurrent instances safe.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"telecare/internal/config"
	"telecare/internal/database"
	"telecare/internal/logging"
	"telecare/internal/metrics"
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

	if !cfg.FeeSchedule.AutoReleaseEscrow {
		logger.Info().Msg("automatic escrow release is disabled, exiting")
		return
	}

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}

	var notifs notifier.Notifier = notifier.Noop{}
	if cfg.Kafka.Enabled {
		notifs = notifier.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	}
	defer notifs.Close()

	svc := settlement.NewService(
		repository.NewBookingRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewEscrowRepository(db),
		cfg.FeeSchedule,
		clock.System(),
		notifs,
		metrics.New(prometheus.NewRegistry()),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settlement.NewWorker(svc, cfg.Escrow.SweepInterval, logger).Run(ctx)
}
