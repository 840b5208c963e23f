package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
	"github.com/kankokujin/kankokujin-no-map/pkg/metrics"
)

// MetricsMiddleware records request counts, latency and error classes for
// one endpoint label. Server errors are also logged to log.
func MetricsMiddleware(log logger.Logger, next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		code := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, durationMs)

		if rec.status < http.StatusBadRequest {
			return
		}
		class := errorClass(rec.status)
		metrics.RecordErrorByEndpoint(endpoint, r.Method, class)
		metrics.RecordErrorByType(class, severity(rec.status))
		metrics.RecordErrorLatency("http", class, durationMs)
		if rec.status >= http.StatusInternalServerError {
			log.Warn(r.Context(), "request failed",
				logger.String("endpoint", endpoint),
				logger.String("method", r.Method),
				logger.Int("status", rec.status),
				logger.Float64("duration_ms", durationMs))
		}
	}
}

// errorClass maps a status to the code strings writeServiceError emits.
func errorClass(status int) string {
	switch {
	case status == http.StatusServiceUnavailable:
		return "not_ready"
	case status >= http.StatusInternalServerError:
		return "internal_error"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "bad_request"
	}
}

func severity(status int) string {
	if status >= http.StatusInternalServerError {
		return "high"
	}
	return "medium"
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
