package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/pair-matching-engine/internal/api/models"
	"github.com/PxPatel/pair-matching-engine/internal/logger"
	"github.com/PxPatel/pair-matching-engine/internal/matching"
	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// SubmitOrderHandler places, fills or sweeps a single order depending on its type
func (eh *EngineHolder) SubmitOrderHandler(w http.ResponseWriter, r *http.Request) {
	pair, httpErr := pairFromRequest(r)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	var req models.SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	side, httpErr := req.Validate()
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	order := types.NewOrder(side, req.Size)
	requested := order.Size

	var (
		fills []types.Fill
		err   error
	)
	switch req.OrderType {
	case models.OrderTypeLimit:
		err = eh.Engine.PlaceLimitOrder(pair, *req.Price, order)
	case models.OrderTypeMarket:
		fills, err = eh.Engine.FillMarketOrder(pair, *req.Price, order)
	case models.OrderTypeSweep:
		fills, err = eh.Engine.SweepMarketOrder(pair, order)
	}

	response := models.SubmitOrderResponse{
		BaseResponse: newBase("Order submitted successfully"),
		OrderID:      order.ID,
		Market:       pair.String(),
		Fills:        models.NewFillDTOs(fills),
	}
	if req.OrderType == models.OrderTypeLimit {
		// a resting order belongs to the book now and may already be filling
		response.Filled = decimal.Zero
		response.Remaining = requested
		response.Status = models.OrderStatusResting
	} else {
		response.Filled = requested.Sub(order.Size)
		response.Remaining = order.Size
		response.Status = takerStatus(order, fills)
	}

	if err != nil {
		httpErr := models.FromEngineError(err)

		// a sweep keeps what it matched, so report the fills with the error
		if errors.Is(err, matching.ErrInsufficientLiquidity) && len(fills) > 0 {
			response.Success = false
			response.Message = httpErr.Error.Message
			response.Error = &httpErr.Error
			writeJSON(w, httpErr.StatusCode, response)
			return
		}
		writeErrorResponse(w, httpErr)
		return
	}

	logger.Info("Order submitted successfully", map[string]interface{}{
		"market":   pair.String(),
		"order_id": order.ID.String(),
		"type":     req.OrderType,
		"side":     side.String(),
		"fills":    len(fills),
	})

	writeJSON(w, http.StatusOK, response)
}

// takerStatus describes a market or sweep order, which never rests
func takerStatus(order *types.Order, fills []types.Fill) string {
	switch {
	case order.IsFilled():
		return models.OrderStatusFilled
	case len(fills) > 0:
		return models.OrderStatusPartiallyFilled
	default:
		return models.OrderStatusRejected
	}
}

// UncrossHandler matches crossed resting orders in one market
func (eh *EngineHolder) UncrossHandler(w http.ResponseWriter, r *http.Request) {
	pair, httpErr := pairFromRequest(r)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	fills, err := eh.Engine.Uncross(pair)
	if err != nil {
		writeErrorResponse(w, models.FromEngineError(err))
		return
	}

	writeJSON(w, http.StatusOK, models.UncrossResponse{
		BaseResponse: newBase(""),
		Market:       pair.String(),
		Fills:        models.NewFillDTOs(fills),
		Count:        len(fills),
	})
}
