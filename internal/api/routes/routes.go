package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/PxPatel/pair-matching-engine/internal/api/handlers"
	"github.com/PxPatel/pair-matching-engine/internal/api/middleware"
	"github.com/PxPatel/pair-matching-engine/internal/api/models"
)

// SetupRoutes configures all API routes with middleware
func SetupRoutes(engineHolder *handlers.EngineHolder, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", engineHolder.HealthHandler).Methods(http.MethodGet)

	// Market endpoints
	api.HandleFunc("/markets", engineHolder.ListMarketsHandler).Methods(http.MethodGet)
	api.HandleFunc("/markets", engineHolder.CreateMarketHandler).Methods(http.MethodPost)
	api.HandleFunc("/markets/{pair}", engineHolder.DeleteMarketHandler).Methods(http.MethodDelete)

	// Order and book endpoints, scoped to one market
	api.HandleFunc("/markets/{pair}/orders", engineHolder.SubmitOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/markets/{pair}/uncross", engineHolder.UncrossHandler).Methods(http.MethodPost)
	api.HandleFunc("/markets/{pair}/orderbook", engineHolder.GetOrderBookHandler).Methods(http.MethodGet)

	// Fill endpoints
	api.HandleFunc("/fills", engineHolder.GetFillsHandler).Methods(http.MethodGet)

	// Apply middleware (order matters: Recovery -> CORS -> Logging -> Handler)
	handler := middleware.Recovery(router)
	handler = middleware.CORS(allowedOrigins)(handler)
	handler = middleware.Logging(handler)

	return handler
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeRouteError(w, http.StatusNotFound, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeRouteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func writeRouteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   message,
		Error: &models.APIError{
			Code:    models.ErrInvalidRequest,
			Message: message,
		},
	})
}
