package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// Order types accepted by the order endpoint
const (
	OrderTypeLimit  = "limit"  // rest in the book
	OrderTypeMarket = "market" // fill at exactly one price level, all or nothing
	OrderTypeSweep  = "sweep"  // fill best price first across levels
)

// CreateMarketRequest opens a new market
type CreateMarketRequest struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// Validate validates the market request and returns the pair
func (r *CreateMarketRequest) Validate() (types.TradingPair, *HTTPError) {
	pair := types.NewTradingPair(
		strings.ToUpper(strings.TrimSpace(r.Base)),
		strings.ToUpper(strings.TrimSpace(r.Quote)),
	)
	if err := pair.Validate(); err != nil {
		return types.TradingPair{}, ErrInvalidMarketError(pair.String(), err)
	}
	return pair, nil
}

// SubmitOrderRequest represents a single order submission.
// Price and size accept JSON strings or numbers.
type SubmitOrderRequest struct {
	OrderType string           `json:"type"`
	Side      string           `json:"side"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Size      decimal.Decimal  `json:"size"`
}

// Validate validates the order request and normalizes OrderType
func (r *SubmitOrderRequest) Validate() (types.Side, *HTTPError) {
	orderType := strings.ToLower(strings.TrimSpace(r.OrderType))
	if orderType == "" {
		orderType = OrderTypeLimit
	}
	switch orderType {
	case OrderTypeLimit, OrderTypeMarket, OrderTypeSweep:
	default:
		return 0, ErrInvalidOrderTypeError(r.OrderType)
	}
	r.OrderType = orderType

	side, err := types.ParseSide(r.Side)
	if err != nil {
		return 0, ErrInvalidSideError(r.Side)
	}

	if r.Size.Sign() <= 0 {
		return 0, ErrInvalidQuantityError(r.Size.String())
	}

	if orderType != OrderTypeSweep && r.Price == nil {
		return 0, ErrMissingPriceError(orderType)
	}

	return side, nil
}
