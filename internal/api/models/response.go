package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// BaseResponse is the base structure for all API responses
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// FillDTO represents a fill in API responses
type FillDTO struct {
	Market       string          `json:"market"`
	MakerOrderID uuid.UUID       `json:"maker_order_id"`
	TakerOrderID uuid.UUID       `json:"taker_order_id"`
	TakerSide    string          `json:"taker_side"`
	Price        decimal.Decimal `json:"price"`
	Size         decimal.Decimal `json:"size"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NewFillDTOs converts engine fills for the wire
func NewFillDTOs(fills []types.Fill) []FillDTO {
	dtos := make([]FillDTO, len(fills))
	for i, f := range fills {
		dtos[i] = FillDTO{
			Market:       f.Pair,
			MakerOrderID: f.MakerOrderID,
			TakerOrderID: f.TakerOrderID,
			TakerSide:    f.TakerSide.String(),
			Price:        f.Price,
			Size:         f.Size,
			Timestamp:    f.Timestamp,
		}
	}
	return dtos
}

// Order outcomes reported by SubmitOrderResponse
const (
	OrderStatusResting         = "resting"
	OrderStatusFilled          = "filled"
	OrderStatusPartiallyFilled = "partially_filled"
	OrderStatusRejected        = "rejected"
)

// SubmitOrderResponse represents the response for order submission
type SubmitOrderResponse struct {
	BaseResponse
	OrderID   uuid.UUID       `json:"order_id"`
	Market    string          `json:"market"`
	Status    string          `json:"status"`
	Filled    decimal.Decimal `json:"filled"`
	Remaining decimal.Decimal `json:"remaining"`
	Fills     []FillDTO       `json:"fills,omitempty"`
}

// MarketDTO describes one registered market
type MarketDTO struct {
	Market string `json:"market"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
}

func NewMarketDTO(pair types.TradingPair) MarketDTO {
	return MarketDTO{Market: pair.String(), Base: pair.Base, Quote: pair.Quote}
}

// MarketResponse is returned when a market is created or removed
type MarketResponse struct {
	BaseResponse
	Market MarketDTO `json:"market"`
}

// MarketsResponse lists all markets
type MarketsResponse struct {
	BaseResponse
	Markets []MarketDTO `json:"markets"`
	Count   int         `json:"count"`
}

// PriceLevel represents a price level in the order book
type PriceLevel struct {
	Price      decimal.Decimal `json:"price"`
	Volume     decimal.Decimal `json:"volume"`
	OrderCount int             `json:"order_count"`
}

// OrderBookResponse represents the aggregated order book
type OrderBookResponse struct {
	BaseResponse
	Market   string           `json:"market"`
	Bids     []PriceLevel     `json:"bids"`
	Asks     []PriceLevel     `json:"asks"`
	Spread   *decimal.Decimal `json:"spread,omitempty"`
	MidPrice *decimal.Decimal `json:"mid_price,omitempty"`
}

// UncrossResponse reports the fills produced by uncrossing a book
type UncrossResponse struct {
	BaseResponse
	Market string    `json:"market"`
	Fills  []FillDTO `json:"fills"`
	Count  int       `json:"count"`
}

// GetFillsResponse represents the response for getting fills
type GetFillsResponse struct {
	BaseResponse
	Fills []FillDTO `json:"fills"`
	Count int       `json:"count"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Version       string    `json:"version"`
	Markets       int       `json:"markets"`
}
