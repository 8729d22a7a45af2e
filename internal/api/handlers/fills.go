package handlers

import (
	"net/http"

	"github.com/PxPatel/pair-matching-engine/internal/api/models"
	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// GetFillsHandler returns recent fills, optionally for one market (?market=BTC-USD)
func (eh *EngineHolder) GetFillsHandler(w http.ResponseWriter, r *http.Request) {
	limit, httpErr := intQuery(r, "limit", eh.Limits.DefaultFillLimit, eh.Limits.MaxFillLimit)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	market := r.URL.Query().Get("market")
	if market != "" {
		pair, err := types.ParseTradingPair(market)
		if err != nil {
			writeErrorResponse(w, models.ErrInvalidMarketError(market, err))
			return
		}
		market = pair.String()
	}

	fills, err := eh.Engine.RecentFills(market, limit)
	if err != nil {
		writeErrorResponse(w, models.ErrInternal("Failed to read fills"))
		return
	}

	writeJSON(w, http.StatusOK, models.GetFillsResponse{
		BaseResponse: newBase(""),
		Fills:        models.NewFillDTOs(fills),
		Count:        len(fills),
	})
}
