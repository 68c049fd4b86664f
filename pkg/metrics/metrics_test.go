package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestRoute(t *testing.T) {
	assert.Equal(t, "/api/v1/bookings/id/:id/accept", Route("/api/v1/bookings/id/65a1b2c3d4e5f60718293a4b/accept"))
	assert.Equal(t, "/api/v1/items/id/:id", Route("/api/v1/items/id/65a1b2c3d4e5f60718293a4b"))
	assert.Equal(t, "/api/v1/bookings/my-bookings", Route("/api/v1/bookings/my-bookings"))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(bookingOperations.WithLabelValues("create", "ok"))
	IncBookingOperation("create", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingOperations.WithLabelValues("create", "ok")))

	before = testutil.ToFloat64(kafkaPublished.WithLabelValues("booking-events", "error"))
	IncKafkaPublish("booking-events", false)
	assert.Equal(t, before+1, testutil.ToFloat64(kafkaPublished.WithLabelValues("booking-events", "error")))

	before = testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/health", "200"))
	ObserveHTTP(http.MethodGet, "/health", http.StatusOK, 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/health", "200")))
}
