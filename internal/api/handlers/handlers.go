package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/PxPatel/pair-matching-engine/internal/api/models"
	"github.com/PxPatel/pair-matching-engine/internal/logger"
	"github.com/PxPatel/pair-matching-engine/internal/matching"
	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// Limits bounds query parameters accepted by the handlers
type Limits struct {
	DefaultFillLimit int
	MaxFillLimit     int
	DefaultDepth     int
	MaxDepth         int
}

// DefaultLimits mirrors the config defaults
var DefaultLimits = Limits{
	DefaultFillLimit: 100,
	MaxFillLimit:     1000,
	DefaultDepth:     10,
	MaxDepth:         100,
}

// EngineHolder wraps the matching engine for dependency injection
type EngineHolder struct {
	Engine *matching.Engine
	Limits Limits
}

// NewEngineHolder creates a new engine holder
func NewEngineHolder(engine *matching.Engine, limits Limits) *EngineHolder {
	return &EngineHolder{Engine: engine, Limits: limits}
}

func newBase(message string) models.BaseResponse {
	return models.BaseResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Message:   message,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", map[string]interface{}{
			"error": err,
		})
	}
}

// writeErrorResponse writes an error response
func writeErrorResponse(w http.ResponseWriter, httpErr *models.HTTPError) {
	logger.Warn("Request failed", map[string]interface{}{
		"error_code": httpErr.Error.Code,
		"status":     httpErr.StatusCode,
	})

	writeJSON(w, httpErr.StatusCode, models.BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   httpErr.Error.Message,
		Error:     &httpErr.Error,
	})
}

// pairFromRequest reads the {pair} route variable
func pairFromRequest(r *http.Request) (types.TradingPair, *models.HTTPError) {
	raw := mux.Vars(r)["pair"]
	pair, err := types.ParseTradingPair(raw)
	if err != nil {
		return types.TradingPair{}, models.ErrInvalidMarketError(raw, err)
	}
	return pair, nil
}

// intQuery parses a positive integer query parameter, clamped to max
func intQuery(r *http.Request, name string, defaultValue, max int) (int, *models.HTTPError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, models.ErrBadRequest(name+" must be a positive integer",
			map[string]interface{}{"field": name, "provided_value": raw})
	}
	if value > max {
		value = max
	}
	return value, nil
}
