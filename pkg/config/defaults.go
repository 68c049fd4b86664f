package config

import "time"

const (
	DefaultMongoURI              = "mongodb://localhost:27017"
	DefaultMongoDatabaseName     = "locmaroc"
	DefaultMongoConnTimeout      = 10 * time.Second
	DefaultMongoOperationTimeout = 5 * time.Second
	DefaultMongoTransactions     = false

	DefaultRedisDB = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultJWTTTL = 7 * 24 * time.Hour

	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultRateLimitBackend  = BackendMemory

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingLockEnabled = true
	DefaultBookingLockBackend = BackendMongo
	DefaultBookingLockTTL     = 30 * time.Second
	DefaultBookingLockWait    = 2 * time.Second
	DefaultServiceFeeRate     = 0.10

	DefaultKafkaBookingTopic = "booking-events"

	DefaultPageLimit       = 12
	DefaultPaginationLimit = 100
	MaxPage                = 10000
)

const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)
