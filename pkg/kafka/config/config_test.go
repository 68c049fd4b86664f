package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load([]string{"localhost:9092"}, "booking-events")

	if cfg.MaxAttempts != DefaultMaxAttempts || cfg.Compression != DefaultCompression {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no brokers", func(c *Config) { c.Brokers = nil }, "At least one Kafka broker"},
		{"empty broker", func(c *Config) { c.Brokers = []string{""} }, "Broker 0 cannot be empty"},
		{"no topic", func(c *Config) { c.Topic = "" }, "Topic cannot be empty"},
		{"dlq same as topic", func(c *Config) { c.DLQTopic = c.Topic }, "DLQTopic must differ"},
		{"bad compression", func(c *Config) { c.Compression = "brotli" }, "Compression must be one of"},
		{"bad acks", func(c *Config) { c.RequireAcks = 3 }, "RequireAcks must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load([]string{"localhost:9092"}, "booking-events")
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
