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
	"skybook/internal/bootstrap"
	"skybook/internal/cache"
	"skybook/internal/kafka"
	"skybook/internal/payment"
	"skybook/internal/repository"
	"skybook/internal/reservations"
	"skybook/internal/service/auth"
	"skybook/internal/service/booking"
	"skybook/internal/service/flights"
	"skybook/internal/service/wizard"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Wizard.FlightsCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	flightService := flights.NewFlightService(flightRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		paymentRepo,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	var submitter wizard.Submitter = bookingService
	if cfg.Reservations.UpstreamURL != "" {
		submitter = reservations.NewClient(cfg.Reservations.UpstreamURL)
	}

	paymentClient := payment.NewSimulatedClient(time.Duration(cfg.Payments.SimulatedDelayMs) * time.Millisecond)
	wizardService := wizard.NewService(
		redisCache,
		flightService,
		paymentClient,
		submitter,
		paymentRepo,
		time.Duration(cfg.Wizard.SessionTTLMinutes)*time.Minute,
		time.Duration(cfg.Wizard.SuccessResetMs)*time.Millisecond,
		cfg.Payments.Currency,
	)

	authService := auth.NewAuthService(
		userRepo,
		redisCache,
		redisCache,
		producer,
		cfg.Kafka.NotificationsTopic,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.VerificationCodeTTLMinutes)*time.Minute,
	)

	if err := bootstrap.Run(ctx, cfg, flightService, bookingService, wizardService, authService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
