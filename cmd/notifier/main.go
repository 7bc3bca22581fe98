package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/config"
	"github.com/apollos-hideaway/hideaway-api/internal/notify"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/email"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/events"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/logger"
)

const queueName = "hideaway.notifier"

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		Service:     "notifier",
	})

	if cfg.AMQPURL == "" {
		log.Fatal().Msg("AMQP_URL is required for the notifier")
	}

	mailer := email.NewFromConfig(email.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFrom,
		FromName:  cfg.EmailFromName,
	})
	defer mailer.Close()

	router := events.NewRouter()
	notify.New(mailer, cfg.ContactRecipient).Register(router)

	consumer, err := events.NewRabbitConsumer(cfg.AMQPURL, queueName, router.Types())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	log.Info().Strs("events", router.Types()).Msg("Starting notifier")
	if err := consumer.Run(ctx, router.Dispatch); err != nil {
		log.Error().Err(err).Msg("Notifier stopped with error")
		return
	}
	log.Info().Msg("Notifier stopped")
}
