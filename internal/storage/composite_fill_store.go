package storage

import (
	"errors"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// CompositeFillStore combines multiple FillStore implementations.
// Writes go to ALL stores, reads come from the FIRST store that has data.
// Example: NewCompositeFillStore(memoryStore, redisStore) writes to both
// and serves reads from memory.
type CompositeFillStore struct {
	stores []FillStore
}

func NewCompositeFillStore(stores ...FillStore) *CompositeFillStore {
	return &CompositeFillStore{stores: stores}
}

func (c *CompositeFillStore) Save(fill types.Fill) error {
	var errs []error
	for _, store := range c.stores {
		if err := store.Save(fill); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *CompositeFillStore) SaveBatch(fills []types.Fill) error {
	var errs []error
	for _, store := range c.stores {
		if err := store.SaveBatch(fills); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *CompositeFillStore) GetRecent(limit int) ([]types.Fill, error) {
	return c.firstWithData(func(s FillStore) ([]types.Fill, error) {
		return s.GetRecent(limit)
	})
}

func (c *CompositeFillStore) GetRecentByPair(pair string, limit int) ([]types.Fill, error) {
	return c.firstWithData(func(s FillStore) ([]types.Fill, error) {
		return s.GetRecentByPair(pair, limit)
	})
}

func (c *CompositeFillStore) firstWithData(read func(FillStore) ([]types.Fill, error)) ([]types.Fill, error) {
	var lastErr error
	for _, store := range c.stores {
		fills, err := read(store)
		if err != nil {
			lastErr = err
			continue
		}
		if len(fills) > 0 {
			return fills, nil
		}
	}
	if lastErr != nil && len(c.stores) == 1 {
		return nil, lastErr
	}
	return []types.Fill{}, nil
}

func (c *CompositeFillStore) Close() error {
	var errs []error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
