package testutils

import (
	"github.com/shopspring/decimal"

	"github.com/PxPatel/pair-matching-engine/internal/api/models"
)

// Order request builders for common test cases

// NewLimitOrder creates a limit order request resting on side at price
func NewLimitOrder(side, price, size string) models.SubmitOrderRequest {
	p := decimal.RequireFromString(price)
	return models.SubmitOrderRequest{
		OrderType: models.OrderTypeLimit,
		Side:      side,
		Price:     &p,
		Size:      decimal.RequireFromString(size),
	}
}

// NewMarketOrder creates an all-or-nothing market order at exactly price
func NewMarketOrder(side, price, size string) models.SubmitOrderRequest {
	p := decimal.RequireFromString(price)
	return models.SubmitOrderRequest{
		OrderType: models.OrderTypeMarket,
		Side:      side,
		Price:     &p,
		Size:      decimal.RequireFromString(size),
	}
}

// NewSweepOrder creates a sweep order that walks levels best price first
func NewSweepOrder(side, size string) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		OrderType: models.OrderTypeSweep,
		Side:      side,
		Size:      decimal.RequireFromString(size),
	}
}

// NewCreateMarket creates a market creation request
func NewCreateMarket(base, quote string) models.CreateMarketRequest {
	return models.CreateMarketRequest{Base: base, Quote: quote}
}
