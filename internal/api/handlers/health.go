package handlers

import (
	"net/http"
	"time"

	"github.com/PxPatel/pair-matching-engine/internal/api/models"
)

var startTime = time.Now()

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler handles health check requests
func (eh *EngineHolder) HealthHandler(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime)

	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(uptime.Seconds()),
		Version:       Version,
		Markets:       len(eh.Engine.Markets()),
	})
}
