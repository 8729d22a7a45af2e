package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fill records quantity exchanged between a resting (maker) order and
// an incoming (taker) order at the maker's price.
type Fill struct {
	Pair         string          `json:"pair,omitempty"`
	MakerOrderID uuid.UUID       `json:"maker_order_id"`
	TakerOrderID uuid.UUID       `json:"taker_order_id"`
	TakerSide    Side            `json:"taker_side"`
	Price        decimal.Decimal `json:"price"`
	Size         decimal.Decimal `json:"size"`
	Timestamp    time.Time       `json:"timestamp"`
}

// TotalSize sums the size of all fills
func TotalSize(fills []Fill) decimal.Decimal {
	total := decimal.Zero
	for _, f := range fills {
		total = total.Add(f.Size)
	}
	return total
}
