package http

import (
	"log"
	"net/http"
	"time"

	"github.com/lls2023049/campus-events/internal/obs"
)

// Logger is the subset of log.Logger handlers use to report failures.
type Logger interface {
	Printf(format string, args ...any)
}

// RequestLogger logs basic request details and latency.
func RequestLogger(next http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Printf(
			"request method=%s path=%s status=%d duration=%s",
			r.Method,
			r.URL.Path,
			rec.status,
			time.Since(start),
		)
	})
}

// RequestMetrics records request latency labeled by the mux pattern
// that served the request, never the raw URL path. Raw paths are
// client-controlled and would mint one time series per distinct path;
// patterns keep the label set bounded by the route table.
func RequestMetrics(mux *http.ServeMux, metrics *obs.Metrics) http.Handler {
	if metrics == nil {
		return mux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		start := time.Now()
		mux.ServeHTTP(w, r)
		metrics.HTTPDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
