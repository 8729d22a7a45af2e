package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/pair-matching-engine/internal/api/models"
	"github.com/PxPatel/pair-matching-engine/internal/matching"
)

func toPriceLevels(levels []matching.Level) []models.PriceLevel {
	out := make([]models.PriceLevel, len(levels))
	for i, l := range levels {
		out[i] = models.PriceLevel{
			Price:      l.Price.Decimal(),
			Volume:     l.Volume,
			OrderCount: l.Orders,
		}
	}
	return out
}

// GetOrderBookHandler returns aggregated depth for one market, best prices first
func (eh *EngineHolder) GetOrderBookHandler(w http.ResponseWriter, r *http.Request) {
	pair, httpErr := pairFromRequest(r)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	depth, httpErr := intQuery(r, "depth", eh.Limits.DefaultDepth, eh.Limits.MaxDepth)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	book, err := eh.Engine.OrderBook(pair)
	if err != nil {
		writeErrorResponse(w, models.FromEngineError(err))
		return
	}

	bids, asks := book.Depth(depth)
	response := models.OrderBookResponse{
		BaseResponse: newBase(""),
		Market:       pair.String(),
		Bids:         toPriceLevels(bids),
		Asks:         toPriceLevels(asks),
	}

	if len(bids) > 0 && len(asks) > 0 {
		bestBid, bestAsk := bids[0].Price.Decimal(), asks[0].Price.Decimal()
		spread := bestAsk.Sub(bestBid)
		mid := bestAsk.Add(bestBid).Div(decimal.NewFromInt(2))
		response.Spread = &spread
		response.MidPrice = &mid
	}

	writeJSON(w, http.StatusOK, response)
}
