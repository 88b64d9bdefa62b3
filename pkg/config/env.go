package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTTTL    = "JWT_TTL"

	EnvPaymentProcessorURL  = "PAYMENT_PROCESSOR_URL"
	EnvPaymentAPIKey        = "PAYMENT_API_KEY"
	EnvPaymentWebhookSecret = "PAYMENT_WEBHOOK_SECRET"

	EnvKafkaBrokers           = "KAFKA_BROKERS"
	EnvKafkaBookingEventTopic = "KAFKA_BOOKING_EVENT_TOPIC"
	EnvKafkaConsumerGroup     = "KAFKA_CONSUMER_GROUP"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMaxSeatsPerBooking = "MAX_SEATS_PER_BOOKING"
	EnvBookingDraftTTL    = "BOOKING_DRAFT_TTL"

	EnvStatsPeriodDays     = "STATS_PERIOD_DAYS"
	EnvDashboardListLimit  = "DASHBOARD_LIST_LIMIT"
)
