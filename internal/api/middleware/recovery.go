package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/PxPatel/pair-matching-engine/internal/api/models"
	"github.com/PxPatel/pair-matching-engine/internal/logger"
)

// Recovery middleware turns a handler panic into a 500 JSON response.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.Error("Panic recovered", map[string]interface{}{
				"panic":      fmt.Sprintf("%v", rec),
				"method":     r.Method,
				"path":       r.URL.Path,
				"stacktrace": string(debug.Stack()),
			})

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(models.BaseResponse{
				Success:   false,
				Timestamp: time.Now().UTC(),
				Message:   "Internal server error",
				Error: &models.APIError{
					Code:    models.ErrInternalError,
					Message: "An unexpected error occurred",
				},
			})
		}()

		next.ServeHTTP(w, r)
	})
}
