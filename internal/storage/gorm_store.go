package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"tixgo/internal/flight"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type searchCacheRow struct {
	ID           uint      `gorm:"primaryKey"`
	SearchHash   string    `gorm:"column:search_hash;size:32;uniqueIndex;not null"`
	SearchParams string    `gorm:"column:search_params;type:text;not null"`
	Results      string    `gorm:"column:results;type:text;not null"`
	CachedAt     time.Time `gorm:"column:cached_at;not null"`
	ExpiresAt    time.Time `gorm:"column:expires_at;index;not null"`
}

func (searchCacheRow) TableName() string { return "flight_search_cache" }

type flightCacheRow struct {
	FlightID     string    `gorm:"column:flight_id;primaryKey;size:64"`
	FlightNumber string    `gorm:"column:flight_number;size:16;not null"`
	FlightData   string    `gorm:"column:flight_data;type:text;not null"`
	SearchHash   string    `gorm:"column:search_hash;size:32"`
	SearchParams *string   `gorm:"column:search_params;type:text"`
	CachedAt     time.Time `gorm:"column:cached_at;not null"`
	ExpiresAt    time.Time `gorm:"column:expires_at;index;not null"`
}

func (flightCacheRow) TableName() string { return "flight_cache" }

// GormStore keeps both cache tables in a SQL database.
type GormStore struct {
	db *gorm.DB
}

var _ flight.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates the cache tables. Production schemas come from
// db/migrations; this is for tests and local sqlite runs.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&searchCacheRow{}, &flightCacheRow{})
}

func (s *GormStore) GetSearch(ctx context.Context, hash string) (*flight.CachedSearch, error) {
	var row searchCacheRow
	err := s.db.WithContext(ctx).Where("search_hash = ?", hash).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, flight.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get search %s: %w", hash, err)
	}

	var params flight.SearchParameters
	if err := json.Unmarshal([]byte(row.SearchParams), &params); err != nil {
		return nil, fmt.Errorf("decode search params %s: %w", hash, err)
	}

	return &flight.CachedSearch{
		Hash:      row.SearchHash,
		Params:    params,
		Results:   json.RawMessage(row.Results),
		CachedAt:  row.CachedAt.UTC(),
		ExpiresAt: row.ExpiresAt.UTC(),
	}, nil
}

func (s *GormStore) UpsertSearch(ctx context.Context, entry *flight.CachedSearch) error {
	params, err := json.Marshal(entry.Params)
	if err != nil {
		return fmt.Errorf("encode search params: %w", err)
	}

	row := searchCacheRow{
		SearchHash:   entry.Hash,
		SearchParams: string(params),
		Results:      string(entry.Results),
		CachedAt:     entry.CachedAt.UTC(),
		ExpiresAt:    entry.ExpiresAt.UTC(),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "search_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"search_params", "results", "cached_at", "expires_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert search %s: %w", entry.Hash, err)
	}
	return nil
}

func (s *GormStore) DeleteSearch(ctx context.Context, hash string) error {
	err := s.db.WithContext(ctx).Where("search_hash = ?", hash).Delete(&searchCacheRow{}).Error
	if err != nil {
		return fmt.Errorf("delete search %s: %w", hash, err)
	}
	return nil
}

func (s *GormStore) GetFlight(ctx context.Context, flightID string) (*flight.CachedFlight, error) {
	var row flightCacheRow
	err := s.db.WithContext(ctx).Where("flight_id = ?", flightID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, flight.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get flight %s: %w", flightID, err)
	}

	entry := &flight.CachedFlight{
		FlightID:     row.FlightID,
		FlightNumber: row.FlightNumber,
		Data:         json.RawMessage(row.FlightData),
		SearchHash:   row.SearchHash,
		CachedAt:     row.CachedAt.UTC(),
		ExpiresAt:    row.ExpiresAt.UTC(),
	}
	if row.SearchParams != nil {
		var params flight.SearchParameters
		if err := json.Unmarshal([]byte(*row.SearchParams), &params); err != nil {
			return nil, fmt.Errorf("decode flight params %s: %w", flightID, err)
		}
		entry.Params = &params
	}
	return entry, nil
}

func (s *GormStore) UpsertFlight(ctx context.Context, entry *flight.CachedFlight) error {
	row := flightCacheRow{
		FlightID:     entry.FlightID,
		FlightNumber: entry.FlightNumber,
		FlightData:   string(entry.Data),
		SearchHash:   entry.SearchHash,
		CachedAt:     entry.CachedAt.UTC(),
		ExpiresAt:    entry.ExpiresAt.UTC(),
	}
	if entry.Params != nil {
		params, err := json.Marshal(entry.Params)
		if err != nil {
			return fmt.Errorf("encode flight params: %w", err)
		}
		p := string(params)
		row.SearchParams = &p
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "flight_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"flight_number", "flight_data", "search_hash", "search_params", "cached_at", "expires_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert flight %s: %w", entry.FlightID, err)
	}
	return nil
}

// DeleteExpired removes rows whose expiry is before now from both tables in
// one transaction.
func (s *GormStore) DeleteExpired(ctx context.Context, now time.Time) (flight.CleanupResult, error) {
	var res flight.CleanupResult
	now = now.UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		searches := tx.Where("expires_at < ?", now).Delete(&searchCacheRow{})
		if searches.Error != nil {
			return searches.Error
		}
		flights := tx.Where("expires_at < ?", now).Delete(&flightCacheRow{})
		if flights.Error != nil {
			return flights.Error
		}
		res.Searches = searches.RowsAffected
		res.Flights = flights.RowsAffected
		return nil
	})
	if err != nil {
		return flight.CleanupResult{}, fmt.Errorf("delete expired: %w", err)
	}
	return res, nil
}
