package matching

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// Limit is the FIFO queue of resting orders at one exact price.
// Limit is not safe for concurrent use; OrderBook serializes access.
type Limit struct {
	price  Price
	orders []*types.Order
}

func NewLimit(price Price) *Limit {
	return &Limit{price: price}
}

func (l *Limit) Price() Price {
	return l.price
}

// AddOrder appends to the tail of the queue
func (l *Limit) AddOrder(order *types.Order) {
	l.orders = append(l.orders, order)
}

// FillOrder matches incoming against resting orders oldest first until
// incoming is filled or the queue runs out. Consumed resting orders are
// removed. The returned fills sum to the size taken off incoming.
func (l *Limit) FillOrder(incoming *types.Order) []types.Fill {
	var fills []types.Fill
	now := time.Now().UTC()

	for _, resting := range l.orders {
		if incoming.IsFilled() {
			break
		}
		if resting.IsFilled() {
			continue
		}

		var matched decimal.Decimal
		if incoming.Size.GreaterThanOrEqual(resting.Size) {
			matched = resting.Size
			incoming.Size = incoming.Size.Sub(resting.Size)
			resting.Size = decimal.Zero
		} else {
			matched = incoming.Size
			resting.Size = resting.Size.Sub(incoming.Size)
			incoming.Size = decimal.Zero
		}

		fills = append(fills, types.Fill{
			MakerOrderID: resting.ID,
			TakerOrderID: incoming.ID,
			TakerSide:    incoming.Side,
			Price:        l.price.Decimal(),
			Size:         matched,
			Timestamp:    now,
		})
	}

	l.compact()
	return fills
}

// TotalVolume sums the remaining size of every resting order
func (l *Limit) TotalVolume() decimal.Decimal {
	total := decimal.Zero
	for _, order := range l.orders {
		total = total.Add(order.Size)
	}
	return total
}

func (l *Limit) Len() int {
	return len(l.orders)
}

func (l *Limit) IsEmpty() bool {
	return len(l.orders) == 0
}

// Head returns the oldest resting order
func (l *Limit) Head() (*types.Order, bool) {
	if len(l.orders) == 0 {
		return nil, false
	}
	return l.orders[0], true
}

// Orders returns a copy of the queue, oldest first
func (l *Limit) Orders() []types.Order {
	out := make([]types.Order, len(l.orders))
	for i, order := range l.orders {
		out[i] = *order
	}
	return out
}

// compact drops filled orders in place, keeping queue order
func (l *Limit) compact() {
	kept := l.orders[:0]
	for _, order := range l.orders {
		if !order.IsFilled() {
			kept = append(kept, order)
		}
	}
	for i := len(kept); i < len(l.orders); i++ {
		l.orders[i] = nil
	}
	l.orders = kept
}
