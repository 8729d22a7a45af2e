package storage

import "github.com/PxPatel/pair-matching-engine/internal/types"

// FillStore abstracts where executed fills are recorded.
// Implementations can be in-memory (ring buffer), Redis, PostgreSQL, etc.
// The order books themselves are never persisted.
type FillStore interface {
	// Save records a single fill
	Save(fill types.Fill) error

	// SaveBatch records the fills of one match in order
	SaveBatch(fills []types.Fill) error

	// GetRecent returns up to limit of the most recent fills, oldest first
	GetRecent(limit int) ([]types.Fill, error)

	// GetRecentByPair is GetRecent restricted to one trading pair
	GetRecentByPair(pair string, limit int) ([]types.Fill, error)

	// Close releases any resources held by the store
	Close() error
}
