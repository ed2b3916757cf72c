package flight

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a testify mock of FlightProvider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SearchFlights(ctx context.Context, params SearchParameters) ([]FlightRecord, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]FlightRecord), args.Error(1)
}

func (m *MockProvider) GetFlightDetails(ctx context.Context, flightNumber, date string) (*FlightRecord, error) {
	args := m.Called(ctx, flightNumber, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FlightRecord), args.Error(1)
}

// memStore is an in-memory Store with per-operation failure injection.
type memStore struct {
	mu       sync.Mutex
	searches map[string]CachedSearch
	flights  map[string]CachedFlight

	getSearchErr    error
	upsertSearchErr error
	deleteSearchErr error
	getFlightErr    error
	upsertFlightErr error
	deleteExpired   error

	upsertFlightCalls int
}

func newMemStore() *memStore {
	return &memStore{
		searches: make(map[string]CachedSearch),
		flights:  make(map[string]CachedFlight),
	}
}

func (m *memStore) GetSearch(_ context.Context, hash string) (*CachedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getSearchErr != nil {
		return nil, m.getSearchErr
	}
	e, ok := m.searches[hash]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &e, nil
}

func (m *memStore) UpsertSearch(_ context.Context, entry *CachedSearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertSearchErr != nil {
		return m.upsertSearchErr
	}
	m.searches[entry.Hash] = *entry
	return nil
}

func (m *memStore) DeleteSearch(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteSearchErr != nil {
		return m.deleteSearchErr
	}
	delete(m.searches, hash)
	return nil
}

func (m *memStore) GetFlight(_ context.Context, flightID string) (*CachedFlight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getFlightErr != nil {
		return nil, m.getFlightErr
	}
	e, ok := m.flights[flightID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &e, nil
}

func (m *memStore) UpsertFlight(_ context.Context, entry *CachedFlight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertFlightCalls++
	if m.upsertFlightErr != nil {
		return m.upsertFlightErr
	}
	m.flights[entry.FlightID] = *entry
	return nil
}

func (m *memStore) DeleteExpired(_ context.Context, now time.Time) (CleanupResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteExpired != nil {
		return CleanupResult{}, m.deleteExpired
	}
	var res CleanupResult
	for k, e := range m.searches {
		if now.After(e.ExpiresAt) {
			delete(m.searches, k)
			res.Searches++
		}
	}
	for k, e := range m.flights {
		if now.After(e.ExpiresAt) {
			delete(m.flights, k)
			res.Flights++
		}
	}
	return res, nil
}

func (m *memStore) searchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.searches)
}

// testClock is a settable clock for TTL tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleParams() SearchParameters {
	return SearchParameters{
		Departure:     "CGK",
		Arrival:       "DPS",
		DepartureDate: "2025-08-01",
		Passengers:    Passengers{Adults: 1},
		Class:         FareClassEconomy,
		TripType:      TripTypeOneWay,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func sampleRecords() []FlightRecord {
	return []FlightRecord{
		{
			ID:           "GA404-2025-08-01",
			FlightNumber: "GA404",
			Airline:      Airline{Name: "Garuda Indonesia", Code: "GA"},
			Departure:    Leg{Airport: "Soekarno-Hatta International", IATA: "CGK", Time: "2025-08-01T06:00:00+00:00"},
			Arrival:      Leg{Airport: "Ngurah Rai International", IATA: "DPS", Time: "2025-08-01T07:50:00+00:00"},
			Duration:     "1h 50m",
			Aircraft:     "B738",
			Price:        PriceTable{Economy: 900_000, Business: int64Ptr(2_250_000), First: int64Ptr(3_600_000)},
			Availability: Availability{Economy: 20, Business: 10, First: 4},
			Status:       StatusScheduled,
		},
		{
			ID:           "QZ7510-2025-08-01",
			FlightNumber: "QZ7510",
			Airline:      Airline{Name: "AirAsia", Code: "QZ"},
			Departure:    Leg{Airport: "Soekarno-Hatta International", IATA: "CGK", Time: "2025-08-01T09:15:00+00:00"},
			Arrival:      Leg{Airport: "Ngurah Rai International", IATA: "DPS", Time: "2025-08-01T11:05:00+00:00"},
			Duration:     "1h 50m",
			Aircraft:     "A320",
			Price:        PriceTable{Economy: 650_000},
			Availability: Availability{Economy: 33, Business: 6, First: 2},
			Status:       StatusScheduled,
		},
		{
			ID:           "GA406-2025-08-01",
			FlightNumber: "GA406",
			Airline:      Airline{Name: "Garuda Indonesia", Code: "GA"},
			Departure:    Leg{Airport: "Soekarno-Hatta International", IATA: "CGK", Time: "2025-08-01T08:30:00+00:00"},
			Arrival:      Leg{Airport: "Ngurah Rai International", IATA: "DPS", Time: "2025-08-01T10:20:00+00:00"},
			Duration:     "1h 50m",
			Aircraft:     "B738",
			Price:        PriceTable{Economy: 1_200_000},
			Availability: Availability{Economy: 12, Business: 8, First: 3},
			Status:       StatusActive,
		},
	}
}
