package redis

import (
	"math/rand"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

func TestClientOptions(t *testing.T) {
	opts := clientOptions(RedisConfig{Host: "cache", Port: 6380, DB: 2, PoolSize: 7, TLSEnabled: true})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, "cache", opts.TLSConfig.ServerName)

	opts = clientOptions(RedisConfig{Host: "localhost", Port: 6379})
	assert.Nil(t, opts.TLSConfig)

	assert.Equal(t, "[::1]:6379", RedisConfig{Host: "::1", Port: 6379}.Addr())
}

func TestFillStoreKeys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	store := NewFillStoreWithClient(client, RedisConfig{})
	assert.Equal(t, "fills:recent", store.recentKey())
	assert.Equal(t, "fills:pair:BTC-USD", store.pairKey("BTC-USD"))
	assert.Equal(t, 10000, store.maxFills)

	store = NewFillStoreWithClient(client, RedisConfig{KeyPrefix: "engine", MaxFills: 5})
	assert.Equal(t, "engine:recent", store.recentKey())
	assert.Equal(t, 5, store.maxFills)
}

func TestFillStoreEmptyBatchSkipsRoundTrip(t *testing.T) {
	// nothing listens on port 0, so any command would fail
	client := redis.NewClient(&redis.Options{Addr: "localhost:0", MaxRetries: -1})
	defer client.Close()

	store := NewFillStoreWithClient(client, RedisConfig{})
	assert.NoError(t, store.SaveBatch(nil))
}

// Redis sorts equal-score members by their bytes. Sorting encoded members the
// same way must give back recording order.
func TestFillMembersSortInRecordingOrder(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	taker := uuid.New()

	var fills []types.Fill
	for i := 1; i <= 12; i++ {
		fills = append(fills, types.Fill{
			Pair:         "BTC-USD",
			MakerOrderID: uuid.New(),
			TakerOrderID: taker,
			TakerSide:    types.Bid,
			Price:        decimal.NewFromInt(100),
			Size:         decimal.NewFromInt(int64(i)),
			Timestamp:    at,
		})
	}
	// later within the same microsecond, so it shares a score
	late := fills[0]
	late.Size = decimal.NewFromInt(99)
	late.Timestamp = at.Add(500 * time.Nanosecond)

	members := make([]string, 0, len(fills)+1)
	// the late fill takes the lowest sequence, its timestamp still wins
	data, err := encodeMember(late, 1)
	require.NoError(t, err)
	members = append(members, data)
	for i, fill := range fills {
		data, err := encodeMember(fill, uint64(i+2))
		require.NoError(t, err)
		members = append(members, data)
	}

	rand.New(rand.NewSource(7)).Shuffle(len(members), func(i, j int) {
		members[i], members[j] = members[j], members[i]
	})
	sort.Strings(members)

	var sizes []string
	for _, member := range members {
		fill, err := decodeMember(member)
		require.NoError(t, err)
		sizes = append(sizes, fill.Size.String())
	}

	expected := make([]string, 0, len(members))
	for i := 1; i <= 12; i++ {
		expected = append(expected, strconv.Itoa(i))
	}
	expected = append(expected, "99")
	assert.Equal(t, expected, sizes)
}

func TestDecodeMemberRoundTrip(t *testing.T) {
	fill := types.Fill{
		Pair:         "ETH-USD",
		MakerOrderID: uuid.New(),
		TakerOrderID: uuid.New(),
		TakerSide:    types.Ask,
		Price:        decimal.RequireFromString("2500.5"),
		Size:         decimal.RequireFromString("0.25"),
		Timestamp:    time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC),
	}

	data, err := encodeMember(fill, 42)
	require.NoError(t, err)

	got, err := decodeMember(data)
	require.NoError(t, err)
	assert.Equal(t, fill.MakerOrderID, got.MakerOrderID)
	assert.True(t, fill.Price.Equal(got.Price))
	assert.True(t, fill.Timestamp.Equal(got.Timestamp))

	_, err = decodeMember(`{"pair":"ETH-USD"}`)
	assert.Error(t, err)
}
