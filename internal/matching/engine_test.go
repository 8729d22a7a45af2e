package matching

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/PxPatel/pair-matching-engine/internal/logger"
	"github.com/PxPatel/pair-matching-engine/internal/storage/memory"
	"github.com/PxPatel/pair-matching-engine/internal/types"
)

var (
	btcUSD = types.NewTradingPair("BTC", "USD")
	ethUSD = types.NewTradingPair("ETH", "USD")
)

type failingStore struct {
	*memory.FillStore
}

func (failingStore) SaveBatch([]types.Fill) error {
	return errors.New("disk full")
}

func TestEngineMarkets(t *testing.T) {
	engine := NewEngine()
	require.NoError(t, engine.AddNewMarket(ethUSD))
	require.NoError(t, engine.AddNewMarket(btcUSD))

	assert.Equal(t, []types.TradingPair{btcUSD, ethUSD}, engine.Markets())

	err := engine.AddNewMarket(btcUSD)
	assert.ErrorIs(t, err, ErrDuplicateMarket)

	assert.Error(t, engine.AddNewMarket(types.NewTradingPair("", "USD")))

	require.NoError(t, engine.RemoveMarket(ethUSD))
	assert.ErrorIs(t, engine.RemoveMarket(ethUSD), ErrUnknownMarket)
	assert.Equal(t, []types.TradingPair{btcUSD}, engine.Markets())
}

func TestEngineDuplicateMarketKeepsBook(t *testing.T) {
	engine := NewEngine()
	require.NoError(t, engine.AddNewMarket(btcUSD))
	require.NoError(t, engine.PlaceLimitOrder(btcUSD, dec("100"), types.NewOrder(types.Bid, dec("1"))))

	assert.ErrorIs(t, engine.AddNewMarket(btcUSD), ErrDuplicateMarket)

	book, err := engine.OrderBook(btcUSD)
	require.NoError(t, err)
	assert.Equal(t, 1, book.LevelCount(types.Bid))
}

func TestEngineUnknownMarket(t *testing.T) {
	engine := NewEngine()
	require.NoError(t, engine.AddNewMarket(btcUSD))

	err := engine.PlaceLimitOrder(ethUSD, dec("100"), types.NewOrder(types.Bid, dec("1")))
	assert.ErrorIs(t, err, ErrUnknownMarket)
	assert.Equal(t, []types.TradingPair{btcUSD}, engine.Markets(), "market is not created implicitly")

	_, err = engine.FillMarketOrder(ethUSD, dec("100"), types.NewOrder(types.Bid, dec("1")))
	assert.ErrorIs(t, err, ErrUnknownMarket)

	_, err = engine.SweepMarketOrder(ethUSD, types.NewOrder(types.Bid, dec("1")))
	assert.ErrorIs(t, err, ErrUnknownMarket)

	_, err = engine.Uncross(ethUSD)
	assert.ErrorIs(t, err, ErrUnknownMarket)

	_, err = engine.OrderBook(ethUSD)
	assert.ErrorIs(t, err, ErrUnknownMarket)
}

func TestEngineRoutesByPair(t *testing.T) {
	store := memory.NewFillStore(10)
	engine := NewEngineWithStore(store)
	require.NoError(t, engine.AddNewMarket(btcUSD))
	require.NoError(t, engine.AddNewMarket(ethUSD))

	require.NoError(t, engine.PlaceLimitOrder(btcUSD, dec("30000"), types.NewOrder(types.Ask, dec("1"))))
	require.NoError(t, engine.PlaceLimitOrder(ethUSD, dec("2000"), types.NewOrder(types.Ask, dec("3"))))

	_, err := engine.FillMarketOrder(ethUSD, dec("30000"), types.NewOrder(types.Bid, dec("1")))
	assert.ErrorIs(t, err, ErrUnknownPriceLevel, "books are independent")

	fills, err := engine.FillMarketOrder(btcUSD, dec("30000"), types.NewOrder(types.Bid, dec("1")))
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, "BTC-USD", fills[0].Pair)

	fills, err = engine.SweepMarketOrder(ethUSD, types.NewOrder(types.Bid, dec("2")))
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, "ETH-USD", fills[0].Pair)

	all, err := engine.RecentFills("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	eth, err := engine.RecentFills("ETH-USD", 10)
	require.NoError(t, err)
	require.Len(t, eth, 1)
	assertDecimal(t, "2", eth[0].Size)
}

func TestEngineUncrossRecordsFills(t *testing.T) {
	store := memory.NewFillStore(10)
	engine := NewEngineWithStore(store)
	require.NoError(t, engine.AddNewMarket(btcUSD))

	require.NoError(t, engine.PlaceLimitOrder(btcUSD, dec("100"), types.NewOrder(types.Ask, dec("1"))))
	require.NoError(t, engine.PlaceLimitOrder(btcUSD, dec("101"), types.NewOrder(types.Bid, dec("1"))))

	fills, err := engine.Uncross(btcUSD)
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, 1, store.Len())

	fills, err = engine.Uncross(btcUSD)
	require.NoError(t, err)
	assert.Empty(t, fills)
}

func TestEngineWithoutStore(t *testing.T) {
	engine := NewEngine()
	fills, err := engine.RecentFills("", 10)
	require.NoError(t, err)
	assert.Empty(t, fills)
	assert.NoError(t, engine.Close())
}

func TestEngineStoreFailureDoesNotUndoMatch(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	engine := NewEngineWithStore(failingStore{memory.NewFillStore(1)})
	engine.SetLogger(logger.NewWithCore(core, logger.DEBUG))
	require.NoError(t, engine.AddNewMarket(btcUSD))
	require.NoError(t, engine.PlaceLimitOrder(btcUSD, dec("100"), types.NewOrder(types.Ask, dec("1"))))

	fills, err := engine.FillMarketOrder(btcUSD, dec("100"), types.NewOrder(types.Bid, dec("1")))
	require.NoError(t, err)
	assert.Len(t, fills, 1)

	failures := logs.FilterMessage("Failed to record fills").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.ErrorLevel, failures[0].Level)
}

func TestEngineLogsInsufficientLiquidity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	engine := NewEngine()
	engine.SetLogger(logger.NewWithCore(core, logger.DEBUG))
	require.NoError(t, engine.AddNewMarket(btcUSD))
	require.NoError(t, engine.PlaceLimitOrder(btcUSD, dec("100"), types.NewOrder(types.Ask, dec("1"))))

	_, err := engine.FillMarketOrder(btcUSD, dec("100"), types.NewOrder(types.Bid, dec("2")))
	require.ErrorIs(t, err, ErrInsufficientLiquidity)

	entries := logs.FilterMessage("Market order not fully filled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "2", entries[0].ContextMap()["requested"])
}

func TestEngineConcurrentMarkets(t *testing.T) {
	engine := NewEngine()
	pairs := []types.TradingPair{btcUSD, ethUSD, types.NewTradingPair("SOL", "USD")}
	for _, p := range pairs {
		require.NoError(t, engine.AddNewMarket(p))
	}

	var wg sync.WaitGroup
	for _, p := range pairs {
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(pair types.TradingPair) {
				defer wg.Done()
				for i := 0; i < 25; i++ {
					_ = engine.PlaceLimitOrder(pair, dec("10"), types.NewOrder(types.Bid, dec("1")))
					_ = engine.Markets()
				}
			}(p)
		}
	}
	wg.Wait()

	for _, p := range pairs {
		book, err := engine.OrderBook(p)
		require.NoError(t, err)
		volume, err := book.VolumeAt(types.Bid, dec("10"))
		require.NoError(t, err)
		assertDecimal(t, "100", volume, p.String())
	}
}

// A taker may match a limit order the moment it rests, while the placing
// caller is still returning.
func TestEngineFillsRestingOrderWhilePlacing(t *testing.T) {
	engine := NewEngine()
	engine.SetLogger(logger.NewWithCore(zapcore.NewNopCore(), logger.ERROR))
	require.NoError(t, engine.AddNewMarket(btcUSD))

	for round := 0; round < 500; round++ {
		maker := types.NewOrder(types.Ask, dec("1"))
		taker := types.NewOrder(types.Bid, dec("1"))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, engine.PlaceLimitOrder(btcUSD, dec("100"), maker))
		}()
		go func() {
			defer wg.Done()
			for {
				fills, err := engine.FillMarketOrder(btcUSD, dec("100"), taker)
				if err == nil {
					assert.Len(t, fills, 1)
					return
				}
				if !assert.ErrorIs(t, err, ErrUnknownPriceLevel) {
					return
				}
			}
		}()
		wg.Wait()

		assert.True(t, taker.IsFilled(), "round %d", round)
	}

	book, err := engine.OrderBook(btcUSD)
	require.NoError(t, err)
	assert.Equal(t, 0, book.LevelCount(types.Ask))
}

func bidVolume(t *testing.T, book *OrderBook, price string) decimal.Decimal {
	t.Helper()
	volume, err := book.VolumeAt(types.Bid, dec(price))
	if errors.Is(err, ErrUnknownPriceLevel) {
		return decimal.Zero
	}
	require.NoError(t, err)
	return volume
}

// Placements racing a market reopen land in exactly one book, never in the
// book that was already dropped.
func TestEngineRemoveMarketDuringPlacements(t *testing.T) {
	engine := NewEngine()
	require.NoError(t, engine.AddNewMarket(btcUSD))
	oldBook, err := engine.OrderBook(btcUSD)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		placed    atomic.Int64
		snapshot  decimal.Decimal
		startGate = make(chan struct{})
	)

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-startGate
			for i := 0; i < 200; i++ {
				err := engine.PlaceLimitOrder(btcUSD, dec("10"), types.NewOrder(types.Bid, dec("1")))
				if err == nil {
					placed.Add(1)
					continue
				}
				assert.ErrorIs(t, err, ErrUnknownMarket)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-startGate
		assert.NoError(t, engine.RemoveMarket(btcUSD))
		snapshot = bidVolume(t, oldBook, "10")
		assert.NoError(t, engine.AddNewMarket(btcUSD))
	}()

	close(startGate)
	wg.Wait()

	assert.True(t, snapshot.Equal(bidVolume(t, oldBook, "10")), "dropped book must not grow")

	newBook, err := engine.OrderBook(btcUSD)
	require.NoError(t, err)
	total := snapshot.Add(bidVolume(t, newBook, "10"))
	assertDecimal(t, decimal.NewFromInt(placed.Load()).String(), total)
}

func TestEngineSetLoggerWhilePlacing(t *testing.T) {
	engine := NewEngine()
	require.NoError(t, engine.AddNewMarket(btcUSD))

	core, logs := observer.New(zapcore.DebugLevel)
	quiet := logger.NewWithCore(core, logger.ERROR)
	loud := logger.NewWithCore(core, logger.DEBUG)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if i%2 == 0 {
				engine.SetLogger(loud)
			} else {
				engine.SetLogger(quiet)
			}
		}
		engine.SetLogger(loud)
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			assert.NoError(t, engine.PlaceLimitOrder(btcUSD, dec("10"), types.NewOrder(types.Bid, dec("1"))))
		}
	}()
	wg.Wait()

	require.NoError(t, engine.PlaceLimitOrder(btcUSD, dec("10"), types.NewOrder(types.Bid, dec("1"))))
	assert.NotZero(t, logs.FilterMessage("Limit order placed").Len())
}
