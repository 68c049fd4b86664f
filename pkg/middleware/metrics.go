package middleware

import (
	"locmaroc/pkg/metrics"
	"net/http"
	"time"
)

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)
		metrics.ObserveHTTP(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}
