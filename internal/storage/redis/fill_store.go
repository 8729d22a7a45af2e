package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

const defaultKeyPrefix = "fills"

// FillStore implements storage.FillStore using Redis sorted sets scored by
// fill time. One set holds every fill and one set per pair holds that pair's
// fills; both are trimmed to the newest MaxFills entries.
//
// Members carry a fixed-width time and sequence prefix. Redis orders members
// with equal scores lexicographically, so fills from one match keep the order
// they were recorded in.
type FillStore struct {
	client   *redis.Client
	prefix   string
	maxFills int
	seq      atomic.Uint64
}

// NewFillStore connects to Redis and returns a fill store
func NewFillStore(cfg RedisConfig) (*FillStore, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewFillStoreWithClient(client, cfg), nil
}

// NewFillStoreWithClient wraps an existing client
func NewFillStoreWithClient(client *redis.Client, cfg RedisConfig) *FillStore {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	maxFills := cfg.MaxFills
	if maxFills <= 0 {
		maxFills = 10000
	}
	return &FillStore{client: client, prefix: prefix, maxFills: maxFills}
}

func (s *FillStore) recentKey() string {
	return s.prefix + ":recent"
}

func (s *FillStore) pairKey(pair string) string {
	return fmt.Sprintf("%s:pair:%s", s.prefix, pair)
}

func (s *FillStore) Save(fill types.Fill) error {
	return s.SaveBatch([]types.Fill{fill})
}

func (s *FillStore) SaveBatch(fills []types.Fill) error {
	if len(fills) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := s.client.Pipeline()
	touched := map[string]struct{}{s.recentKey(): {}}

	for _, fill := range fills {
		data, err := encodeMember(fill, s.seq.Add(1))
		if err != nil {
			return err
		}

		// microseconds stay exact in a float64 score, the member prefix
		// orders anything finer
		member := redis.Z{
			Score:  float64(fill.Timestamp.UnixMicro()),
			Member: data,
		}
		pipe.ZAdd(ctx, s.recentKey(), member)
		if fill.Pair != "" {
			key := s.pairKey(fill.Pair)
			pipe.ZAdd(ctx, key, member)
			touched[key] = struct{}{}
		}
	}

	// Trim to keep only last N fills
	for key := range touched {
		pipe.ZRemRangeByRank(ctx, key, 0, int64(-s.maxFills-1))
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *FillStore) GetRecent(limit int) ([]types.Fill, error) {
	return s.readTail(s.recentKey(), limit)
}

func (s *FillStore) GetRecentByPair(pair string, limit int) ([]types.Fill, error) {
	return s.readTail(s.pairKey(pair), limit)
}

// readTail returns the newest limit members in ascending score order
func (s *FillStore) readTail(key string, limit int) ([]types.Fill, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	results, err := s.client.ZRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}

	fills := make([]types.Fill, 0, len(results))
	for _, data := range results {
		fill, err := decodeMember(data)
		if err != nil {
			continue
		}
		fills = append(fills, fill)
	}
	return fills, nil
}

// encodeMember renders "<unix nanos>:<seq>|<json>" with both numbers zero
// padded so byte order matches recording order
func encodeMember(fill types.Fill, seq uint64) (string, error) {
	data, err := json.Marshal(fill)
	if err != nil {
		return "", fmt.Errorf("encode fill: %w", err)
	}
	return fmt.Sprintf("%020d:%020d|%s", fill.Timestamp.UnixNano(), seq, data), nil
}

func decodeMember(member string) (types.Fill, error) {
	var fill types.Fill
	_, data, ok := strings.Cut(member, "|")
	if !ok {
		return fill, fmt.Errorf("decode fill: missing ordering prefix")
	}
	if err := json.Unmarshal([]byte(data), &fill); err != nil {
		return fill, fmt.Errorf("decode fill: %w", err)
	}
	return fill, nil
}

func (s *FillStore) Close() error {
	return s.client.Close()
}
