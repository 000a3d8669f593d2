// seed populates a local database with a realistic spread of bookings so the
// analytics endpoints have something to show. It drives the real services
// rather than inserting rows directly, so audit events, payments and escrow
// holds stay consistent.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"telecare/internal/database"
	"telecare/internal/domain"
	"telecare/internal/metrics"
	"telecare/internal/modules/booking"
	"telecare/internal/modules/payment"
	"telecare/internal/modules/settlement"
	"telecare/internal/notifier"
	"telecare/internal/pkg/clock"
	"telecare/internal/repository"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "telecare.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM audit_events")
	db.Exec("DELETE FROM escrow_releases")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM bookings")

	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	escrowRepo := repository.NewEscrowRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	fees := domain.FeeSchedule{
		CommissionRatePercent: 10,
		BookingFee:            500,
		CancellationFee:       1000,
		EscrowHoldDays:        7,
		AutoReleaseEscrow:     true,
	}

	clk := clock.System()
	m := metrics.New(prometheus.NewRegistry())
	logger := zerolog.New(os.Stdout).Level(zerolog.WarnLevel)

	settlementService := settlement.NewService(bookingRepo, paymentRepo, escrowRepo, fees, clk, notifier.Noop{}, m, logger)
	bookingService := booking.NewService(bookingRepo, auditRepo, settlementService, notifier.Noop{}, clk, m, logger)
	paymentService := payment.NewService(bookingRepo, bookingService, paymentRepo, notifier.Noop{}, clk, m, logger)

	ctx := context.Background()
	providers := []string{"prov-aisha", "prov-bolat", "prov-chinara", "prov-daniyar"}
	modes := []string{"remote", "in_person"}

	log.Println("Creating bookings...")
	var completed, cancelled, pending int
	for i := 0; i < 40; i++ {
		fee := int64(5000 + rand.Intn(20)*500)
		b, err := bookingService.CreateBooking(ctx, booking.CreateBookingRequest{
			PatientID:       fmt.Sprintf("pat-%03d", rand.Intn(25)),
			ProviderID:      providers[rand.Intn(len(providers))],
			ScheduledAt:     time.Now().Add(time.Duration(rand.Intn(14*24)) * time.Hour),
			Mode:            modes[rand.Intn(len(modes))],
			Reason:          "seeded consultation",
			ConsentGranted:  true,
			ConsultationFee: fee,
		})
		if err != nil {
			log.Fatal("create booking:", err)
		}

		switch rand.Intn(10) {
		case 0, 1: // still waiting for the provider
			pending++

		case 2: // cancelled before payment
			mustTransition(ctx, bookingService, b.ID, domain.EventCancellationRequested, "patient changed plans")
			cancelled++

		case 3: // paid, then cancelled: exercises the refund path
			mustTransition(ctx, bookingService, b.ID, domain.EventProviderAccepted, "")
			mustPay(ctx, paymentService, b.ID, fee)
			mustTransition(ctx, bookingService, b.ID, domain.EventCancellationRequested, "provider unavailable")
			cancelled++

		default: // full lifecycle through completion
			mustTransition(ctx, bookingService, b.ID, domain.EventProviderAccepted, "")
			mustPay(ctx, paymentService, b.ID, fee)
			mustTransition(ctx, bookingService, b.ID, domain.EventConsultationStarted, "")
			mustTransition(ctx, bookingService, b.ID, domain.EventConsultationEnded, "")
			completed++
		}
	}

	log.Printf("Seeded 40 bookings: %d completed, %d cancelled, %d pending", completed, cancelled, pending)
}

func mustTransition(ctx context.Context, svc *booking.Service, id string, event domain.BookingEvent, reason string) {
	if _, err := svc.Transition(ctx, id, event, reason); err != nil {
		log.Fatalf("transition %s on %s: %v", event, id, err)
	}
}

func mustPay(ctx context.Context, svc *payment.Service, id string, amount int64) {
	if _, err := svc.RecordPayment(ctx, id, payment.RecordPaymentRequest{Amount: amount, Status: "paid"}); err != nil {
		log.Fatalf("pay %s: %v", id, err)
	}
}
