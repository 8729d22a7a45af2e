package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !dec(expected).Equal(actual) {
		assert.Fail(t, "expected "+expected+", got "+actual.String(), msgAndArgs...)
	}
}

func TestLimitFillOrderFIFO(t *testing.T) {
	limit := NewLimit(MustPrice("10000"))
	first := types.NewOrder(types.Ask, dec("100"))
	second := types.NewOrder(types.Ask, dec("155"))
	limit.AddOrder(first)
	limit.AddOrder(second)
	assertDecimal(t, "255", limit.TotalVolume())

	fills := limit.FillOrder(types.NewOrder(types.Bid, dec("50")))
	require.Len(t, fills, 1)
	assert.Equal(t, first.ID, fills[0].MakerOrderID)
	assertDecimal(t, "50", first.Size)
	assertDecimal(t, "155", second.Size)

	fills = limit.FillOrder(types.NewOrder(types.Bid, dec("56")))
	require.Len(t, fills, 2)
	assert.Equal(t, first.ID, fills[0].MakerOrderID)
	assertDecimal(t, "50", fills[0].Size)
	assert.Equal(t, second.ID, fills[1].MakerOrderID)
	assertDecimal(t, "6", fills[1].Size)

	assert.Equal(t, 1, limit.Len(), "filled head is removed")
	assertDecimal(t, "149", limit.TotalVolume())
	head, ok := limit.Head()
	require.True(t, ok)
	assert.Equal(t, second.ID, head.ID)
}

func TestLimitFillOrderLeavesIncomingRemainder(t *testing.T) {
	limit := NewLimit(MustPrice("10000"))
	limit.AddOrder(types.NewOrder(types.Bid, dec("96")))

	incoming := types.NewOrder(types.Ask, dec("100"))
	fills := limit.FillOrder(incoming)

	require.Len(t, fills, 1)
	assertDecimal(t, "96", fills[0].Size)
	assertDecimal(t, "4", incoming.Size)
	assert.True(t, limit.IsEmpty())
	assertDecimal(t, "0", limit.TotalVolume())
}

func TestLimitFillConservesQuantity(t *testing.T) {
	limit := NewLimit(MustPrice("1.5"))
	for _, size := range []string{"0.3", "1.25", "7", "2.00001"} {
		limit.AddOrder(types.NewOrder(types.Ask, dec(size)))
	}
	before := limit.TotalVolume()

	incoming := types.NewOrder(types.Bid, dec("8.4"))
	requested := incoming.Size
	fills := limit.FillOrder(incoming)

	filled := types.TotalSize(fills)
	assertDecimal(t, requested.Sub(incoming.Size).String(), filled)
	assertDecimal(t, before.Sub(filled).String(), limit.TotalVolume())
	assert.True(t, incoming.IsFilled())

	for _, f := range fills {
		assertDecimal(t, "1.5", f.Price)
		assert.Equal(t, incoming.ID, f.TakerOrderID)
		assert.Equal(t, types.Bid, f.TakerSide)
	}
}

func TestLimitOrdersReturnsCopies(t *testing.T) {
	limit := NewLimit(MustPrice("1"))
	order := types.NewOrder(types.Bid, dec("3"))
	limit.AddOrder(order)

	orders := limit.Orders()
	require.Len(t, orders, 1)
	orders[0].Size = dec("0")

	assertDecimal(t, "3", order.Size)
	assertDecimal(t, "3", limit.TotalVolume())
}

func TestLimitEmptyQueue(t *testing.T) {
	limit := NewLimit(MustPrice("1"))
	_, ok := limit.Head()
	assert.False(t, ok)

	incoming := types.NewOrder(types.Bid, dec("3"))
	assert.Empty(t, limit.FillOrder(incoming))
	assertDecimal(t, "3", incoming.Size)
}

func TestLimitFullRestingFill(t *testing.T) {
	limit := NewLimit(MustPrice("10000"))
	resting := types.NewOrder(types.Bid, dec("100"))
	limit.AddOrder(resting)

	incoming := types.NewOrder(types.Ask, dec("96"))
	fills := limit.FillOrder(incoming)

	require.Len(t, fills, 1)
	assertDecimal(t, "96", fills[0].Size)
	assert.True(t, incoming.IsFilled())
	assertDecimal(t, "4", resting.Size)
	assertDecimal(t, "4", limit.TotalVolume())
	assert.Equal(t, 1, limit.Len())
}
