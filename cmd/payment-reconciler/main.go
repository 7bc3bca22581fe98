package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/config"
	"github.com/apollos-hideaway/hideaway-api/internal/domain/booking"
	"github.com/apollos-hideaway/hideaway-api/internal/domain/payment"
	"github.com/apollos-hideaway/hideaway-api/internal/domain/villa"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/checkout"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/database"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/events"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/logger"
	"github.com/apollos-hideaway/hideaway-api/internal/reconcile"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		Service:     "payment-reconciler",
	})

	log.Info().Dur("interval", cfg.ReconcileInterval).Msg("Starting payment-reconciler")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, status updates will not reach open streams")
		rdb = nil
	}
	defer database.CloseRedis(rdb)

	villaService := villa.NewService(villa.NewCachedRepository(villa.NewRepository(db), rdb))
	bookingService := booking.NewService(booking.NewRepository(db), villaService, cfg.BookingHoldTTL)

	if cfg.AMQPURL != "" {
		publisher, err := events.NewRabbitPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer publisher.Close()
		bookingService.SetPublisher(publisher)
	} else {
		log.Warn().Msg("AMQP_URL not set, booking events from sweeps are not published")
	}

	runner := &reconcile.Runner{
		Bookings: bookingService,
		Interval: cfg.ReconcileInterval,
	}

	if cfg.UseSandboxPayments() {
		// sandbox sessions only exist inside the API process
		log.Warn().Msg("Sandbox checkout in use, only expiring holds")
	} else {
		gateway := checkout.NewStripeClient(checkout.StripeConfig{
			BaseURL:       cfg.StripeBaseURL,
			APIKey:        cfg.StripeAPIKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			Timeout:       cfg.StripeTimeout,
		})
		paymentService := payment.NewService(payment.NewRepository(db), bookingService, gateway, cfg.PaymentCurrency)
		paymentService.SetBroker(payment.NewStatusBroker(rdb))
		runner.Payments = paymentService
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	runner.Run(ctx)
}
