package config

const (
	EnvMongoURI              = "MONGO_URI"
	EnvMongoDatabaseName     = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout      = "MONGO_CONN_TIMEOUT"
	EnvMongoOperationTimeout = "MONGO_OPERATION_TIMEOUT"
	EnvMongoTransactions     = "MONGO_TRANSACTIONS"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTTTL    = "JWT_TTL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvRateLimitBackend  = "RATE_LIMIT_BACKEND"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingLockEnabled = "BOOKING_LOCK_ENABLED"
	EnvBookingLockBackend = "BOOKING_LOCK_BACKEND"
	EnvBookingLockTTL     = "BOOKING_LOCK_TTL"
	EnvBookingLockWait    = "BOOKING_LOCK_WAIT"
	EnvServiceFeeRate     = "SERVICE_FEE_RATE"

	EnvKafkaBrokers      = "KAFKA_BROKERS"
	EnvKafkaBookingTopic = "KAFKA_BOOKING_TOPIC"
)
