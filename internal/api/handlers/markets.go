package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/PxPatel/pair-matching-engine/internal/api/models"
	"github.com/PxPatel/pair-matching-engine/internal/logger"
)

// ListMarketsHandler lists every registered market
func (eh *EngineHolder) ListMarketsHandler(w http.ResponseWriter, r *http.Request) {
	pairs := eh.Engine.Markets()

	markets := make([]models.MarketDTO, len(pairs))
	for i, pair := range pairs {
		markets[i] = models.NewMarketDTO(pair)
	}

	writeJSON(w, http.StatusOK, models.MarketsResponse{
		BaseResponse: newBase(""),
		Markets:      markets,
		Count:        len(markets),
	})
}

// CreateMarketHandler opens a new market
func (eh *EngineHolder) CreateMarketHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	pair, httpErr := req.Validate()
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	if err := eh.Engine.AddNewMarket(pair); err != nil {
		writeErrorResponse(w, models.FromEngineError(err))
		return
	}

	logger.Info("Market created", map[string]interface{}{
		"market": pair.String(),
	})

	writeJSON(w, http.StatusCreated, models.MarketResponse{
		BaseResponse: newBase("Market created successfully"),
		Market:       models.NewMarketDTO(pair),
	})
}

// DeleteMarketHandler removes a market and its book
func (eh *EngineHolder) DeleteMarketHandler(w http.ResponseWriter, r *http.Request) {
	pair, httpErr := pairFromRequest(r)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	if err := eh.Engine.RemoveMarket(pair); err != nil {
		writeErrorResponse(w, models.FromEngineError(err))
		return
	}

	writeJSON(w, http.StatusOK, models.MarketResponse{
		BaseResponse: newBase("Market removed successfully"),
		Market:       models.NewMarketDTO(pair),
	})
}
