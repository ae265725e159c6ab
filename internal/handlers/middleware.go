package handlers

import (
	"net/http"
	"time"

	"gitlab.com/otp-enc.net/internal/core/ports/primary"
)

type MiddlewareProvider struct {
	logger primary.Logger
}

func New(logger primary.Logger) *MiddlewareProvider {
	return &MiddlewareProvider{
		logger: logger,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// AccessLog logs method, path, status and latency of every request at debug level
func (m *MiddlewareProvider) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
