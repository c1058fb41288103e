package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mmynk/duoledger/internal/metrics"
)

// Instrument returns a middleware that counts and times requests for route.
// The route label is the registered pattern, never the raw path.
func Instrument(m *metrics.Server, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			m.Requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			m.Duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
