package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request metrics and a debug log line for every request.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		took := time.Since(start)
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(endpoint, r.Method, rec.status, took)
		}

		s.logger.Debug("http request",
			zap.String("endpoint", endpoint),
			zap.String("method", r.Method),
			zap.Int("status", rec.status),
			zap.Duration("took", took),
		)
	}
}
