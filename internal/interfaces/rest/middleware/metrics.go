package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/metrics"
)

// Metrics records request counts and latencies. Paths outside known are
// folded into "other" to keep label cardinality bounded.
func Metrics(m *metrics.Metrics, known []string) func(http.Handler) http.Handler {
	paths := make(map[string]struct{}, len(known))
	for _, p := range known {
		paths[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if _, ok := paths[path]; !ok {
				path = "other"
			}
			method := strings.ToUpper(r.Method)

			m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
			m.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		})
	}
}
