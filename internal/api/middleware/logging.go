package middleware

import (
	"net/http"
	"time"

	"github.com/PxPatel/pair-matching-engine/internal/logger"
)

// responseWriter wraps http.ResponseWriter to capture status code and body size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Logging middleware logs every request once it completes.
// Server errors log at ERROR, client errors at WARN, the rest at INFO.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		ctx := map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"remote":      r.RemoteAddr,
			"status":      wrapped.statusCode,
			"bytes":       wrapped.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
		}

		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			logger.Error("Request completed", ctx)
		case wrapped.statusCode >= http.StatusBadRequest:
			logger.Warn("Request completed", ctx)
		default:
			logger.Info("Request completed", ctx)
		}
	})
}
