package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Eursukkul/eventsphere/config"
	"github.com/Eursukkul/eventsphere/internal/consumer"
	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"github.com/Eursukkul/eventsphere/internal/scheduler"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/Eursukkul/eventsphere/pkg/database"
	"github.com/Eursukkul/eventsphere/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}

	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var publisher service.Publisher
	var consumerDone <-chan struct{}
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer p.Close()
		publisher = p

		// RabbitMQ consumer: domain events become in-app notifications
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to start consuming")
		}
		consumerDone = consumer.NewNotificationConsumer(notificationRepo).Start(msgs)
	} else {
		logging.Warn().Msg("RABBITMQ_URL not set, notifications and reminders are not delivered")
	}

	eventSvc := service.NewEventService(eventRepo, registrationRepo, publisher)

	jobs, err := scheduler.New(eventSvc, scheduler.Config{
		SweepSchedule:    cfg.SweepSchedule,
		ReminderSchedule: cfg.ReminderSchedule,
		ReminderWindow:   cfg.ReminderWindow,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to schedule jobs")
	}
	jobs.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
	case <-consumerDone:
		logging.Error().Msg("RabbitMQ delivery channel closed")
	}

	<-jobs.Stop().Done()
	logging.Info().Msg("worker stopped")
}
