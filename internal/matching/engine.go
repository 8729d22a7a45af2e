package matching

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/pair-matching-engine/internal/logger"
	"github.com/PxPatel/pair-matching-engine/internal/storage"
	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// Engine routes orders to one independent OrderBook per trading pair.
//
// The pair -> book map is guarded by an RWMutex. Order routing holds the
// read lock for the whole book call, so a market cannot be removed while an
// order is being placed into it. Adding or removing a market takes the write
// lock. Each OrderBook has its own mutex, so books for different pairs never
// block each other.
type Engine struct {
	mu    sync.RWMutex
	books map[types.TradingPair]*OrderBook
	fills storage.FillStore
	log   atomic.Pointer[logger.Logger]
}

// NewEngine creates an engine that does not record fills
func NewEngine() *Engine {
	return NewEngineWithStore(nil)
}

// NewEngineWithStore creates an engine that forwards every fill to store
func NewEngineWithStore(store storage.FillStore) *Engine {
	e := &Engine{
		books: make(map[types.TradingPair]*OrderBook),
		fills: store,
	}
	e.log.Store(logger.Default())
	return e
}

// SetLogger replaces the logger used by the engine. Safe while orders flow.
func (e *Engine) SetLogger(l *logger.Logger) {
	e.log.Store(l)
}

func (e *Engine) logger() *logger.Logger {
	return e.log.Load()
}

// withBook runs fn on the book for pair while holding the registry read lock
func (e *Engine) withBook(pair types.TradingPair, fn func(*OrderBook) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	book, ok := e.books[pair]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMarket, pair)
	}
	return fn(book)
}

// AddNewMarket opens an empty book for pair.
// It fails with ErrDuplicateMarket rather than replace a populated book.
func (e *Engine) AddNewMarket(pair types.TradingPair) error {
	if err := pair.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.books[pair]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMarket, pair)
	}
	e.books[pair] = NewOrderBook()

	e.logger().Info("Opened new order book", map[string]interface{}{
		"market": pair.String(),
	})
	return nil
}

// RemoveMarket drops the book for pair together with its resting orders
func (e *Engine) RemoveMarket(pair types.TradingPair) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.books[pair]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownMarket, pair)
	}
	delete(e.books, pair)

	e.logger().Info("Closed order book", map[string]interface{}{
		"market": pair.String(),
	})
	return nil
}

// OrderBook returns the book for pair
func (e *Engine) OrderBook(pair types.TradingPair) (*OrderBook, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	book, ok := e.books[pair]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarket, pair)
	}
	return book, nil
}

// Markets lists registered pairs sorted by their BASE-QUOTE form
func (e *Engine) Markets() []types.TradingPair {
	e.mu.RLock()
	defer e.mu.RUnlock()

	pairs := make([]types.TradingPair, 0, len(e.books))
	for pair := range e.books {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].String() < pairs[j].String()
	})
	return pairs
}

// PlaceLimitOrder rests order in the book for pair. It never auto-creates a market.
// Once placed the book owns order: its Size may change under the book lock at
// any time, so callers must not read it without going through the book.
func (e *Engine) PlaceLimitOrder(pair types.TradingPair, price decimal.Decimal, order *types.Order) error {
	var ctx map[string]interface{}
	if order != nil {
		ctx = map[string]interface{}{
			"market":   pair.String(),
			"order_id": order.ID.String(),
			"side":     order.Side.String(),
			"price":    price.String(),
			"size":     order.Size.String(),
		}
	}

	err := e.withBook(pair, func(book *OrderBook) error {
		return book.AddLimitOrder(price, order)
	})
	switch {
	case errors.Is(err, ErrUnknownMarket):
		e.logger().Warn("Rejected limit order for unknown market", map[string]interface{}{
			"market": pair.String(),
		})
		return err
	case err != nil:
		return err
	}

	e.logger().Debug("Limit order placed", ctx)
	return nil
}

// FillMarketOrder matches order against the opposite side at exactly price
// in the book for pair. See OrderBook.FillMarketOrder.
func (e *Engine) FillMarketOrder(pair types.TradingPair, price decimal.Decimal, order *types.Order) ([]types.Fill, error) {
	var fills []types.Fill
	err := e.withBook(pair, func(book *OrderBook) error {
		var err error
		fills, err = book.FillMarketOrder(price, order)
		return err
	})
	if errors.Is(err, ErrUnknownMarket) {
		return nil, err
	}

	e.record(pair, fills)
	e.logOutcome("Market order", pair, order, fills, err)
	return fills, err
}

// SweepMarketOrder matches order best price first across levels of the book
// for pair. See OrderBook.SweepMarketOrder.
func (e *Engine) SweepMarketOrder(pair types.TradingPair, order *types.Order) ([]types.Fill, error) {
	var fills []types.Fill
	err := e.withBook(pair, func(book *OrderBook) error {
		var err error
		fills, err = book.SweepMarketOrder(order)
		return err
	})
	if errors.Is(err, ErrUnknownMarket) {
		return nil, err
	}

	e.record(pair, fills)
	e.logOutcome("Sweep order", pair, order, fills, err)
	return fills, err
}

// Uncross matches crossed resting orders in the book for pair
func (e *Engine) Uncross(pair types.TradingPair) ([]types.Fill, error) {
	var fills []types.Fill
	err := e.withBook(pair, func(book *OrderBook) error {
		fills = book.Uncross()
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.record(pair, fills)
	if len(fills) > 0 {
		e.logger().Info("Uncrossed book", map[string]interface{}{
			"market": pair.String(),
			"fills":  len(fills),
			"volume": types.TotalSize(fills).String(),
		})
	}
	return fills, nil
}

// RecentFills reads from the configured fill store. An empty pair reads all markets.
func (e *Engine) RecentFills(pair string, limit int) ([]types.Fill, error) {
	if e.fills == nil {
		return []types.Fill{}, nil
	}
	if pair == "" {
		return e.fills.GetRecent(limit)
	}
	return e.fills.GetRecentByPair(pair, limit)
}

// record stamps fills with the pair and forwards them to the store.
// A store failure is logged; the match itself already happened.
func (e *Engine) record(pair types.TradingPair, fills []types.Fill) {
	for i := range fills {
		fills[i].Pair = pair.String()
	}
	if e.fills == nil || len(fills) == 0 {
		return
	}
	if err := e.fills.SaveBatch(fills); err != nil {
		e.logger().Error("Failed to record fills", map[string]interface{}{
			"market": pair.String(),
			"fills":  len(fills),
			"error":  err,
		})
	}
}

func (e *Engine) logOutcome(kind string, pair types.TradingPair, order *types.Order, fills []types.Fill, err error) {
	ctx := map[string]interface{}{
		"market": pair.String(),
		"fills":  len(fills),
		"filled": types.TotalSize(fills).String(),
	}
	if order != nil {
		ctx["order_id"] = order.ID.String()
		ctx["side"] = order.Side.String()
		ctx["remaining"] = order.Size.String()
	}

	var liquidity *InsufficientLiquidityError
	switch {
	case err == nil:
		e.logger().Info(kind+" filled", ctx)
	case errors.As(err, &liquidity):
		ctx["requested"] = liquidity.Requested.String()
		ctx["available"] = liquidity.Available.String()
		e.logger().Warn(kind+" not fully filled", ctx)
	default:
		ctx["error"] = err
		e.logger().Warn(kind+" rejected", ctx)
	}
}

// Close releases the fill store
func (e *Engine) Close() error {
	if e.fills == nil {
		return nil
	}
	return e.fills.Close()
}
