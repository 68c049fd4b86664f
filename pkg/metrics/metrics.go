package metrics

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "locmaroc"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	bookingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operations_total",
			Help:      "Booking lifecycle operations by outcome (ok or the error code).",
		},
		[]string{"operation", "outcome"},
	)

	lockContention = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_lock_contention_total",
			Help:      "Booking creations rejected because another request held the item lock.",
		},
		[]string{"backend"},
	)

	kafkaPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_published_total",
			Help:      "Kafka publish attempts by topic and outcome.",
		},
		[]string{"topic", "outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingOperations, lockContention, kafkaPublished)
	})
}

var objectIDPattern = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)

// Route collapses ObjectIDs in a path so labels stay bounded.
func Route(path string) string {
	return objectIDPattern.ReplaceAllString(path, "/:id$1")
}

func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	route := Route(path)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func IncBookingOperation(operation, outcome string) {
	bookingOperations.WithLabelValues(operation, outcome).Inc()
}

func IncLockContention(backend string) {
	lockContention.WithLabelValues(backend).Inc()
}

func IncKafkaPublish(topic string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	kafkaPublished.WithLabelValues(topic, outcome).Inc()
}
