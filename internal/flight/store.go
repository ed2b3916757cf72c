package flight

import (
	"context"
	"encoding/json"
	"time"
)

// CachedSearch is the primary cache row, keyed by the search fingerprint.
type CachedSearch struct {
	Hash      string           `json:"hash"`
	Params    SearchParameters `json:"params"`
	Results   json.RawMessage  `json:"results"`
	CachedAt  time.Time        `json:"cachedAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// CachedFlight is a per-flight snapshot written alongside a search, or after
// a single flight lookup (then Params is nil).
type CachedFlight struct {
	FlightID     string            `json:"flightId"`
	FlightNumber string            `json:"flightNumber"`
	Data         json.RawMessage   `json:"data"`
	SearchHash   string            `json:"searchHash,omitempty"`
	Params       *SearchParameters `json:"params,omitempty"`
	CachedAt     time.Time         `json:"cachedAt"`
	ExpiresAt    time.Time         `json:"expiresAt"`
}

// Store persists both cache tables. Get methods return ErrCacheMiss when
// nothing is stored; upserts overwrite on key conflict.
type Store interface {
	GetSearch(ctx context.Context, hash string) (*CachedSearch, error)
	UpsertSearch(ctx context.Context, entry *CachedSearch) error
	DeleteSearch(ctx context.Context, hash string) error
	GetFlight(ctx context.Context, flightID string) (*CachedFlight, error)
	UpsertFlight(ctx context.Context, entry *CachedFlight) error
	DeleteExpired(ctx context.Context, now time.Time) (CleanupResult, error)
}
