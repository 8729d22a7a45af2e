package memory

import (
	"sync"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// FillStore keeps the N most recent fills in memory.
// Thread-safe for concurrent access via RWMutex.
type FillStore struct {
	fills   []types.Fill
	maxSize int
	mutex   sync.RWMutex
}

// NewFillStore creates an in-memory fill store holding at most maxSize fills
func NewFillStore(maxSize int) *FillStore {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &FillStore{
		fills:   make([]types.Fill, 0, maxSize),
		maxSize: maxSize,
	}
}

func (s *FillStore) Save(fill types.Fill) error {
	return s.SaveBatch([]types.Fill{fill})
}

func (s *FillStore) SaveBatch(fills []types.Fill) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.fills = append(s.fills, fills...)

	// Trim to max size
	if len(s.fills) > s.maxSize {
		trimmed := make([]types.Fill, s.maxSize)
		copy(trimmed, s.fills[len(s.fills)-s.maxSize:])
		s.fills = trimmed
	}
	return nil
}

func (s *FillStore) GetRecent(limit int) ([]types.Fill, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	// Clamp limit to actual size
	if limit <= 0 || limit > len(s.fills) {
		limit = len(s.fills)
	}

	result := make([]types.Fill, limit)
	copy(result, s.fills[len(s.fills)-limit:])
	return result, nil
}

func (s *FillStore) GetRecentByPair(pair string, limit int) ([]types.Fill, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var matched []types.Fill
	for i := len(s.fills) - 1; i >= 0; i-- {
		if s.fills[i].Pair != pair {
			continue
		}
		matched = append(matched, s.fills[i])
		if limit > 0 && len(matched) == limit {
			break
		}
	}

	// collected newest first
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched, nil
}

func (s *FillStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.fills)
}

func (s *FillStore) Close() error {
	// No cleanup needed for in-memory store
	return nil
}
