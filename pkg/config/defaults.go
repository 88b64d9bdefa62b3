package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "silvalley"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultJWTTTL = 24 * time.Hour

	DefaultPaymentProcessorURL = "http://localhost:4242"

	DefaultKafkaBrokers           = "localhost:9092"
	DefaultKafkaBookingEventTopic = "booking-events"
	DefaultKafkaConsumerGroup     = "silvalley-notifier"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMaxSeatsPerBooking = 10
	DefaultBookingDraftTTL    = 30 * time.Minute

	DefaultStatsPeriodDays    = 30
	DefaultDashboardListLimit = 5

	DefaultPaginationLimit = 100
)
