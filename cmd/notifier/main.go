package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"silvalley/internal/notifications/repository"
	"silvalley/internal/notifications/service"
	"silvalley/pkg/config"
	"silvalley/pkg/kafka"
	kafka_config "silvalley/pkg/kafka/config"
	kafka_middleware "silvalley/pkg/kafka/middleware"
)

const (
	ServiceName     = "notifier"
	consumerGroupID = "notifier"
)

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Notifier service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	counters := repository.NewMongoBookingCounterRepository(cfg)
	notifier := service.NewNotificationService(counters, cfg.Log)

	kafkaCfg := kafka_config.Load()
	kafkaCfg.Brokers = cfg.KafkaBrokers

	topic := cfg.KafkaBookingEventTopic
	consumer, err := kafka.NewConsumer(kafkaCfg, topic, consumerGroupID, topic+".dlq", notifier.HandleMessage)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "topic", topic, "error", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	}()

	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Consuming booking events",
		"topic", topic,
		"group_id", consumerGroupID,
		"brokers", cfg.KafkaBrokers,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Fatal("Consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Notifier stopped")
}
