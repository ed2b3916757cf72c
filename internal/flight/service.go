package flight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"tixgo/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const DefaultTTLMinutes = 30

// FlightProvider is the upstream source of flight records.
type FlightProvider interface {
	SearchFlights(ctx context.Context, params SearchParameters) ([]FlightRecord, error)
	GetFlightDetails(ctx context.Context, flightNumber, date string) (*FlightRecord, error)
}

// Recorder receives cache and provider measurements.
type Recorder interface {
	ObserveCacheLookup(result string)
	ObserveProviderCall(op string, err error, elapsed time.Duration)
	ObserveCleanup(searches, flights int64)
}

const (
	LookupHit     = "hit"
	LookupMiss    = "miss"
	LookupExpired = "expired"
	LookupError   = "error"
)

type nopRecorder struct{}

func (nopRecorder) ObserveCacheLookup(string) {}
func (nopRecorder) ObserveProviderCall(string, error, time.Duration) {}
func (nopRecorder) ObserveCleanup(int64, int64) {}

type Service struct {
	provider FlightProvider
	store    Store
	ttl      time.Duration
	logger   logger.Logger
	metrics  Recorder
	tracer   trace.Tracer
	now      func() time.Time
	group    *singleflight.Group
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithCoalescing merges concurrent misses for the same fingerprint into a
// single provider call.
func WithCoalescing(enabled bool) Option {
	return func(s *Service) {
		if enabled {
			s.group = &singleflight.Group{}
		} else {
			s.group = nil
		}
	}
}

func NewService(provider FlightProvider, store Store, ttlMinutes int, log logger.Logger, opts ...Option) *Service {
	if ttlMinutes <= 0 {
		ttlMinutes = DefaultTTLMinutes
	}
	s := &Service{
		provider: provider,
		store:    store,
		ttl:      time.Duration(ttlMinutes) * time.Minute,
		logger:   log,
		metrics:  nopRecorder{},
		tracer:   otel.Tracer("tixgo/internal/flight"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchFlights serves a search from the cache when a fresh entry exists,
// otherwise asks the provider and stores the assembled response. Provider
// failures are returned as is and never cached. Cache failures only cost the
// caller a cache hit.
func (s *Service) SearchFlights(ctx context.Context, params SearchParameters) (*SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "flight.SearchFlights")
	defer span.End()

	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hash, err := Fingerprint(params)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("cache.key", hash),
		attribute.String("route", params.Departure+"-"+params.Arrival),
	)

	if cached, ok := s.lookupSearch(ctx, hash); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &SearchResult{Response: cached, CacheHit: true, Fingerprint: hash}, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	var resp *SearchResponse
	if s.group != nil {
		// The shared call outlives any single caller; the provider client
		// timeout still bounds it.
		v, err, shared := s.group.Do(hash, func() (any, error) {
			return s.refresh(context.WithoutCancel(ctx), hash, params)
		})
		if err != nil {
			return nil, s.fail(span, err)
		}
		if shared {
			s.logger.Debug("search coalesced", logger.Field{Key: "cache_key", Value: hash})
		}
		resp = v.(*SearchResponse)
	} else {
		resp, err = s.refresh(ctx, hash, params)
		if err != nil {
			return nil, s.fail(span, err)
		}
	}

	return &SearchResult{Response: resp, CacheHit: false, Fingerprint: hash}, nil
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// lookupSearch reports a usable cached response. An entry is stale only once
// now is strictly after its expiry; stale entries are removed on the spot.
func (s *Service) lookupSearch(ctx context.Context, hash string) (*SearchResponse, bool) {
	entry, err := s.store.GetSearch(ctx, hash)
	if errors.Is(err, ErrCacheMiss) {
		s.metrics.ObserveCacheLookup(LookupMiss)
		return nil, false
	}
	if err != nil {
		s.metrics.ObserveCacheLookup(LookupError)
		s.logger.Warn("search cache read failed",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "cache_key", Value: hash},
		)
		return nil, false
	}

	if s.now().After(entry.ExpiresAt) {
		s.metrics.ObserveCacheLookup(LookupExpired)
		if err := s.store.DeleteSearch(ctx, hash); err != nil {
			s.logger.Warn("expired search entry delete failed",
				logger.Field{Key: "err", Value: err},
				logger.Field{Key: "cache_key", Value: hash},
			)
		}
		return nil, false
	}

	var resp SearchResponse
	if err := json.Unmarshal(entry.Results, &resp); err != nil {
		s.metrics.ObserveCacheLookup(LookupError)
		s.logger.Warn("cached search response unreadable",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "cache_key", Value: hash},
		)
		return nil, false
	}

	s.metrics.ObserveCacheLookup(LookupHit)
	return &resp, true
}

func (s *Service) refresh(ctx context.Context, hash string, params SearchParameters) (*SearchResponse, error) {
	start := time.Now()
	flights, err := s.provider.SearchFlights(ctx, params)
	s.metrics.ObserveProviderCall("search", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	resp := BuildSearchResponse(flights)

	cachedAt := s.now().UTC()
	expiresAt := cachedAt.Add(s.ttl)

	s.storeSearch(ctx, hash, params, resp, cachedAt, expiresAt)
	s.storeFlights(ctx, hash, params, resp.Flights, cachedAt, expiresAt)

	s.logger.Info("search cached",
		logger.Field{Key: "cache_key", Value: hash},
		logger.Field{Key: "flights", Value: len(resp.Flights)},
		logger.Field{Key: "ttl_minutes", Value: s.ttl.Minutes()},
	)
	return resp, nil
}

func (s *Service) storeSearch(ctx context.Context, hash string, params SearchParameters, resp *SearchResponse, cachedAt, expiresAt time.Time) {
	results, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("search response marshal failed",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "cache_key", Value: hash},
		)
		return
	}

	err = s.store.UpsertSearch(ctx, &CachedSearch{
		Hash:      hash,
		Params:    params,
		Results:   results,
		CachedAt:  cachedAt,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.logger.Warn("search cache write failed",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "cache_key", Value: hash},
		)
	}
}

// storeFlights writes per-flight snapshots. Each write is independent; a
// failure is logged and the rest continue.
func (s *Service) storeFlights(ctx context.Context, hash string, params SearchParameters, flights []FlightRecord, cachedAt, expiresAt time.Time) {
	for _, f := range flights {
		p := params
		s.storeFlight(ctx, &f, hash, &p, cachedAt, expiresAt)
	}
}

func (s *Service) storeFlight(ctx context.Context, f *FlightRecord, hash string, params *SearchParameters, cachedAt, expiresAt time.Time) {
	data, err := json.Marshal(f)
	if err != nil {
		s.logger.Warn("flight marshal failed",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "flight_id", Value: f.ID},
		)
		return
	}

	err = s.store.UpsertFlight(ctx, &CachedFlight{
		FlightID:     f.ID,
		FlightNumber: f.FlightNumber,
		Data:         data,
		SearchHash:   hash,
		Params:       params,
		CachedAt:     cachedAt,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		s.logger.Warn("flight cache write failed",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "flight_id", Value: f.ID},
		)
	}
}

// GetFlightDetails looks a single flight up, preferring a fresh per-flight
// cache entry over a provider call.
func (s *Service) GetFlightDetails(ctx context.Context, flightNumber, date string) (*FlightRecord, error) {
	ctx, span := s.tracer.Start(ctx, "flight.GetFlightDetails")
	defer span.End()

	flightNumber = strings.ToUpper(strings.TrimSpace(flightNumber))
	date = strings.TrimSpace(date)
	if err := validateLookup(flightNumber, date); err != nil {
		return nil, err
	}

	id := flightID(flightNumber, date)
	span.SetAttributes(attribute.String("flight.id", id))

	if rec, ok := s.lookupFlight(ctx, id); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return rec, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	start := time.Now()
	rec, err := s.provider.GetFlightDetails(ctx, flightNumber, date)
	s.metrics.ObserveProviderCall("lookup", err, time.Since(start))
	if err != nil {
		if errors.Is(err, ErrFlightNotFound) {
			return nil, err
		}
		return nil, s.fail(span, err)
	}

	cachedAt := s.now().UTC()
	s.storeFlight(ctx, rec, "", nil, cachedAt, cachedAt.Add(s.ttl))
	return rec, nil
}

func (s *Service) lookupFlight(ctx context.Context, id string) (*FlightRecord, bool) {
	entry, err := s.store.GetFlight(ctx, id)
	if errors.Is(err, ErrCacheMiss) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("flight cache read failed",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "flight_id", Value: id},
		)
		return nil, false
	}
	if s.now().After(entry.ExpiresAt) {
		return nil, false
	}

	var rec FlightRecord
	if err := json.Unmarshal(entry.Data, &rec); err != nil {
		s.logger.Warn("cached flight unreadable",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "flight_id", Value: id},
		)
		return nil, false
	}
	return &rec, true
}

// InvalidateCache drops the cached search for params and returns its
// fingerprint. Dropping an entry that does not exist is not an error.
func (s *Service) InvalidateCache(ctx context.Context, params SearchParameters) (string, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return "", err
	}

	hash, err := Fingerprint(params)
	if err != nil {
		return "", err
	}

	if err := s.store.DeleteSearch(ctx, hash); err != nil {
		return "", fmt.Errorf("invalidate %s: %w", hash, err)
	}

	s.logger.Info("search cache invalidated", logger.Field{Key: "cache_key", Value: hash})
	return hash, nil
}

// CleanExpiredCache removes every expired row from both cache tables.
func (s *Service) CleanExpiredCache(ctx context.Context) (CleanupResult, error) {
	ctx, span := s.tracer.Start(ctx, "flight.CleanExpiredCache")
	defer span.End()

	res, err := s.store.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return CleanupResult{}, s.fail(span, fmt.Errorf("clean expired cache: %w", err))
	}

	s.metrics.ObserveCleanup(res.Searches, res.Flights)
	s.logger.Info("expired cache cleaned",
		logger.Field{Key: "searches", Value: res.Searches},
		logger.Field{Key: "flights", Value: res.Flights},
	)
	return res, nil
}
