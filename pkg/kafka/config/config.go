package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config describes one producer. Brokers and Topic come from the service
// configuration; tuning knobs come from the environment.
type Config struct {
	Brokers  []string
	Topic    string
	DLQTopic string

	MaxAttempts  int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	RequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	Compression  string // "none", "gzip", "snappy", "lz4", "zstd"
}

func Load(brokers []string, topic string) *Config {
	return &Config{
		Brokers:  brokers,
		Topic:    topic,
		DLQTopic: os.Getenv(EnvKafkaDLQTopic),

		MaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultMaxAttempts),
		BatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultBatchTimeout),
		WriteTimeout: getEnvDuration(EnvKafkaProducerWriteTimeout, DefaultWriteTimeout),
		RequireAcks:  getEnvInt(EnvKafkaProducerRequireAcks, DefaultRequireAcks),
		Compression:  getEnvStr(EnvKafkaProducerCompression, DefaultCompression),
	}
}

func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}
	for i, broker := range cfg.Brokers {
		if broker == "" {
			errors = append(errors, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}
	if cfg.Topic == "" {
		errors = append(errors, "Topic cannot be empty")
	}
	if cfg.DLQTopic != "" && cfg.DLQTopic == cfg.Topic {
		errors = append(errors, "DLQTopic must differ from Topic")
	}
	if cfg.MaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("MaxAttempts must be positive, got: %d", cfg.MaxAttempts))
	}
	if cfg.BatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("BatchTimeout must be positive, got: %s", cfg.BatchTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}

	validCompressions := map[string]bool{"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true}
	if !validCompressions[cfg.Compression] {
		errors = append(errors, fmt.Sprintf("Compression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.Compression))
	}
	if cfg.RequireAcks < -1 || cfg.RequireAcks > 1 {
		errors = append(errors, fmt.Sprintf("RequireAcks must be -1, 0, or 1, got: %d", cfg.RequireAcks))
	}

	if len(errors) > 0 {
		errMsg := "Kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
