package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"skybook/config"
	"skybook/internal/email"
	"skybook/internal/kafka"
	"skybook/internal/repository"
	"skybook/internal/service/booking"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	bookingService := booking.NewBookingService(bookingRepo, paymentRepo, nil, "")

	consumer := kafka.NewNotificationConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	reconcileAge := time.Duration(cfg.Worker.ReconcileAgeMinutes) * time.Minute
	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.ReconcileSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			// Charged but never turned into a reservation. Reported
			// for manual reconciliation, never auto-refunded.
			unreconciled, err := bookingService.ReportUnreconciled(ctx, reconcileAge)
			if err != nil {
				log.Printf("reconcile sweep error: %v", err)
				continue
			}
			for _, p := range unreconciled {
				log.Printf("RECONCILE: payment %s for flight %d (%d %s) captured at %s was never applied",
					p.Token, p.FlightID, p.AmountCents, p.Currency, p.CreatedAt.Format(time.RFC3339))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
