package matching

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

/*
Each side keeps two structures:
  - map Price -> *Limit for O(1) lookup of an exact price level
  - btree of Prices for best-price-first walks (sweeps, uncrossing, depth)

Both are updated together: a price is in the btree iff it has a Limit in the map.
A Limit is evicted as soon as its last order is filled, so every Limit in the
map holds at least one order with size > 0.
*/

const levelTreeDegree = 32

// Level is an aggregated view of one price level
type Level struct {
	Price  Price
	Volume decimal.Decimal
	Orders int
}

type bookSide struct {
	side   types.Side
	limits map[Price]*Limit
	levels *btree.BTreeG[Price]
}

func newBookSide(side types.Side) *bookSide {
	return &bookSide{
		side:   side,
		limits: make(map[Price]*Limit),
		levels: btree.NewG(levelTreeDegree, func(a, b Price) bool { return a.Less(b) }),
	}
}

func (s *bookSide) getOrCreate(price Price) *Limit {
	if limit, ok := s.limits[price]; ok {
		return limit
	}
	limit := NewLimit(price)
	s.limits[price] = limit
	s.levels.ReplaceOrInsert(price)
	return limit
}

func (s *bookSide) evictIfEmpty(price Price) {
	limit, ok := s.limits[price]
	if !ok || !limit.IsEmpty() {
		return
	}
	delete(s.limits, price)
	s.levels.Delete(price)
}

// best is the highest bid or the lowest ask
func (s *bookSide) best() (Price, bool) {
	if s.side == types.Bid {
		return s.levels.Max()
	}
	return s.levels.Min()
}

// pricesBestFirst snapshots level prices so callers may mutate the tree while walking
func (s *bookSide) pricesBestFirst(limit int) []Price {
	prices := make([]Price, 0, s.levels.Len())
	collect := func(p Price) bool {
		prices = append(prices, p)
		return limit <= 0 || len(prices) < limit
	}
	if s.side == types.Bid {
		s.levels.Descend(collect)
	} else {
		s.levels.Ascend(collect)
	}
	return prices
}

func (s *bookSide) level(price Price) Level {
	limit := s.limits[price]
	return Level{Price: price, Volume: limit.TotalVolume(), Orders: limit.Len()}
}

// OrderBook holds the bid and ask Limits of one trading pair.
// All methods are safe for concurrent use; one mutex serializes every
// placement and fill so a fill never interleaves with a placement mid-queue.
type OrderBook struct {
	mu   sync.Mutex
	bids *bookSide
	asks *bookSide
	seq  uint64
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: newBookSide(types.Bid),
		asks: newBookSide(types.Ask),
	}
}

func (ob *OrderBook) sideOf(side types.Side) *bookSide {
	if side == types.Bid {
		return ob.bids
	}
	return ob.asks
}

func validateOrder(order *types.Order) error {
	if order == nil {
		return fmt.Errorf("%w: nil order", ErrInvalidSize)
	}
	if !order.Side.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSide, order.Side)
	}
	if order.Size.Sign() <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidSize, order.Size)
	}
	return nil
}

// AddLimitOrder rests order on its own side at price. It never checks the
// opposite side; crossed books are resolved by Uncross.
func (ob *OrderBook) AddLimitOrder(price decimal.Decimal, order *types.Order) error {
	p, err := PriceFromDecimal(price)
	if err != nil {
		return err
	}
	return ob.AddLimitOrderAt(p, order)
}

// AddLimitOrderAt is AddLimitOrder for an already constructed Price
func (ob *OrderBook) AddLimitOrderAt(price Price, order *types.Order) error {
	if err := validateOrder(order); err != nil {
		return err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.seq++
	order.Seq = ob.seq
	ob.sideOf(order.Side).getOrCreate(price).AddOrder(order)
	return nil
}

// FillMarketOrder matches order against the opposite side's Limit at exactly
// price. A bid takes from asks and an ask takes from bids. The fill is all or
// nothing: when the level holds less than order.Size the book is left
// untouched and an *InsufficientLiquidityError is returned.
func (ob *OrderBook) FillMarketOrder(price decimal.Decimal, order *types.Order) ([]types.Fill, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	p, err := PriceFromDecimal(price)
	if err != nil {
		return nil, err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	opposite := ob.sideOf(order.Side.Opposite())
	limit, ok := opposite.limits[p]
	if !ok {
		return nil, fmt.Errorf("%w: no resting %s orders at %s", ErrUnknownPriceLevel, opposite.side, p)
	}

	available := limit.TotalVolume()
	if available.LessThan(order.Size) {
		return nil, &InsufficientLiquidityError{
			Price:     &p,
			Requested: order.Size,
			Available: available,
			Filled:    decimal.Zero,
		}
	}

	fills := limit.FillOrder(order)
	opposite.evictIfEmpty(p)
	return fills, nil
}

// SweepMarketOrder walks the opposite side best price first (lowest ask for a
// bid, highest bid for an ask) until order is filled. Whatever it matched stays
// matched; if liquidity runs out the error reports the unfilled remainder.
func (ob *OrderBook) SweepMarketOrder(order *types.Order) ([]types.Fill, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	requested := order.Size
	opposite := ob.sideOf(order.Side.Opposite())

	var fills []types.Fill
	for _, p := range opposite.pricesBestFirst(0) {
		fills = append(fills, opposite.limits[p].FillOrder(order)...)
		opposite.evictIfEmpty(p)
		if order.IsFilled() {
			return fills, nil
		}
	}

	filled := types.TotalSize(fills)
	return fills, &InsufficientLiquidityError{
		Requested: requested,
		Available: filled,
		Filled:    filled,
	}
}

// Uncross matches resting orders while the best bid is at or above the best
// ask. Each trade prints at the price of whichever head order arrived first.
func (ob *OrderBook) Uncross() []types.Fill {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	var fills []types.Fill
	now := time.Now().UTC()
	for {
		bidPrice, ok := ob.bids.best()
		if !ok {
			break
		}
		askPrice, ok := ob.asks.best()
		if !ok || bidPrice.Less(askPrice) {
			break
		}

		bidLimit, askLimit := ob.bids.limits[bidPrice], ob.asks.limits[askPrice]
		bid, _ := bidLimit.Head()
		ask, _ := askLimit.Head()

		maker, taker, makerLimit := bid, ask, bidLimit
		if ask.Seq < bid.Seq {
			maker, taker, makerLimit = ask, bid, askLimit
		}

		matched := decimal.Min(bid.Size, ask.Size)
		bid.Size = bid.Size.Sub(matched)
		ask.Size = ask.Size.Sub(matched)

		fills = append(fills, types.Fill{
			MakerOrderID: maker.ID,
			TakerOrderID: taker.ID,
			TakerSide:    taker.Side,
			Price:        makerLimit.Price().Decimal(),
			Size:         matched,
			Timestamp:    now,
		})

		bidLimit.compact()
		askLimit.compact()
		ob.bids.evictIfEmpty(bidPrice)
		ob.asks.evictIfEmpty(askPrice)
	}
	return fills
}

// BestBid returns the highest bid level
func (ob *OrderBook) BestBid() (Level, bool) {
	return ob.best(types.Bid)
}

// BestAsk returns the lowest ask level
func (ob *OrderBook) BestAsk() (Level, bool) {
	return ob.best(types.Ask)
}

func (ob *OrderBook) best(side types.Side) (Level, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	s := ob.sideOf(side)
	p, ok := s.best()
	if !ok {
		return Level{}, false
	}
	return s.level(p), true
}

// Depth returns up to n aggregated levels per side, best first. n <= 0 returns all.
func (ob *OrderBook) Depth(n int) (bids, asks []Level) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	for _, p := range ob.bids.pricesBestFirst(n) {
		bids = append(bids, ob.bids.level(p))
	}
	for _, p := range ob.asks.pricesBestFirst(n) {
		asks = append(asks, ob.asks.level(p))
	}
	return bids, asks
}

// LevelCount is the number of distinct prices resting on side
func (ob *OrderBook) LevelCount(side types.Side) int {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return len(ob.sideOf(side).limits)
}

// OrdersAt returns copies of the orders resting on side at price, oldest first
func (ob *OrderBook) OrdersAt(side types.Side, price decimal.Decimal) ([]types.Order, error) {
	p, err := PriceFromDecimal(price)
	if err != nil {
		return nil, err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	limit, ok := ob.sideOf(side).limits[p]
	if !ok {
		return nil, fmt.Errorf("%w: no resting %s orders at %s", ErrUnknownPriceLevel, side, p)
	}
	return limit.Orders(), nil
}

// VolumeAt is the total resting size on side at price
func (ob *OrderBook) VolumeAt(side types.Side, price decimal.Decimal) (decimal.Decimal, error) {
	orders, err := ob.OrdersAt(side, price)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Size)
	}
	return total, nil
}
