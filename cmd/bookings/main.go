package main

import (
	"silvalley/internal/bookings/handler"
	"silvalley/internal/bookings/repository"
	"silvalley/internal/bookings/service"
	"silvalley/internal/bookings/validator"
	"silvalley/internal/bookings/workflow"
	"silvalley/pkg/app"
	"silvalley/pkg/auth"
	"silvalley/pkg/client"
	"silvalley/pkg/config"
	"silvalley/pkg/kafka"
	kafka_config "silvalley/pkg/kafka/config"
	kafka_middleware "silvalley/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Bookings service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	producer := initProducer(cfg)
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}()

	drafts := workflow.NewInMemoryDraftStore(cfg.BookingDraftTTL)

	bookingService := initServices(cfg, producer, drafts)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(drafts.Stop)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log, cfg.PaymentWebhookSecret), tokens)
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.Brokers = cfg.KafkaBrokers

	topic := cfg.KafkaBookingEventTopic
	producer, err := kafka.NewProducer(kafkaCfg, topic, topic+".dlq")
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", topic, "error", err)
	}

	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	cfg.Log.Info("Kafka producer initialized", "topic", topic, "brokers", cfg.KafkaBrokers)
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer, drafts workflow.DraftStore) service.BookingService {
	bookingValidator := validator.NewBookingValidator()
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	ledger := repository.NewMongoSpaceLedger(cfg)
	publisher := service.NewKafkaEventPublisher(producer, cfg.Log)
	payments := client.NewPaymentClient(cfg.PaymentProcessorURL, cfg.PaymentAPIKey)

	bookingService := service.NewBookingService(
		bookingRepo,
		ledger,
		drafts,
		bookingValidator,
		publisher,
		payments,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
