package flight

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"tixgo/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type countingRecorder struct {
	mu      sync.Mutex
	lookups map[string]int
	calls   int
	cleaned CleanupResult
}

func (r *countingRecorder) ObserveCacheLookup(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookups == nil {
		r.lookups = map[string]int{}
	}
	r.lookups[result]++
}

func (r *countingRecorder) ObserveProviderCall(string, error, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
}

func (r *countingRecorder) ObserveCleanup(searches, flights int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleaned = CleanupResult{Searches: searches, Flights: flights}
}

func newTestService(provider FlightProvider, store Store, clock *testClock, opts ...Option) *Service {
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewService(provider, store, 30, logger.Nop(), opts...)
}

func TestService_SearchFlights_MissThenHit(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, sampleParams()).Return(sampleRecords(), nil).Once()
	store := newMemStore()
	clock := newTestClock()
	rec := &countingRecorder{}
	svc := newTestService(provider, store, clock, WithMetrics(rec))

	first, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	clock.Advance(10 * time.Minute)

	second, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Response, second.Response)

	provider.AssertNumberOfCalls(t, "SearchFlights", 1)
	assert.Equal(t, 1, rec.lookups[LookupMiss])
	assert.Equal(t, 1, rec.lookups[LookupHit])
	assert.Equal(t, 1, rec.calls)
}

func TestService_SearchFlights_StoresEntryWithTTL(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil)
	store := newMemStore()
	clock := newTestClock()
	svc := newTestService(provider, store, clock)

	res, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)

	entry, err := store.GetSearch(context.Background(), res.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), entry.CachedAt)
	assert.Equal(t, clock.Now().Add(30*time.Minute), entry.ExpiresAt)
	assert.Equal(t, sampleParams(), entry.Params)

	var stored SearchResponse
	require.NoError(t, json.Unmarshal(entry.Results, &stored))
	assert.Equal(t, *res.Response, stored)

	for _, f := range sampleRecords() {
		cf, err := store.GetFlight(context.Background(), f.ID)
		require.NoError(t, err)
		assert.Equal(t, res.Fingerprint, cf.SearchHash)
		assert.Equal(t, f.FlightNumber, cf.FlightNumber)
		require.NotNil(t, cf.Params)
		assert.Equal(t, sampleParams(), *cf.Params)
		assert.Equal(t, entry.ExpiresAt, cf.ExpiresAt)
	}
}

func TestService_SearchFlights_ExpiryBoundary(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil)
	store := newMemStore()
	clock := newTestClock()
	svc := newTestService(provider, store, clock)

	_, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	res, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.True(t, res.CacheHit, "entry is still valid exactly at expiresAt")

	provider.AssertNumberOfCalls(t, "SearchFlights", 1)
}

func TestService_SearchFlights_ExpiredEntryIsReplaced(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil)
	store := newMemStore()
	clock := newTestClock()
	rec := &countingRecorder{}
	svc := newTestService(provider, store, clock, WithMetrics(rec))

	first, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	second, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.False(t, second.CacheHit)

	provider.AssertNumberOfCalls(t, "SearchFlights", 2)
	assert.Equal(t, 1, rec.lookups[LookupExpired])
	assert.Equal(t, 1, store.searchCount())

	entry, err := store.GetSearch(context.Background(), first.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), entry.CachedAt)
	assert.Equal(t, clock.Now().Add(30*time.Minute), entry.ExpiresAt)
}

func TestService_SearchFlights_ProviderFailureNotCached(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).
		Return(nil, &ProviderError{Op: "search", Err: errors.New("status 500")}).Once()
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil).Once()
	store := newMemStore()
	svc := newTestService(provider, store, newTestClock())

	_, err := svc.SearchFlights(context.Background(), sampleParams())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, 0, store.searchCount())
	assert.Equal(t, 0, store.upsertFlightCalls)

	res, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	provider.AssertNumberOfCalls(t, "SearchFlights", 2)
}

func TestService_SearchFlights_EmptyResultIsCached(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return([]FlightRecord{}, nil).Once()
	store := newMemStore()
	svc := newTestService(provider, store, newTestClock())

	res, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.Empty(t, res.Response.Flights)
	assert.Equal(t, 0, res.Response.Pagination.Total)

	again, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.NotNil(t, again.Response.Flights)
	assert.NotNil(t, again.Response.Filters.Airlines)
	provider.AssertExpectations(t)
}

func TestService_SearchFlights_ValidationStopsBeforeProvider(t *testing.T) {
	provider := new(MockProvider)
	svc := newTestService(provider, newMemStore(), newTestClock())

	p := sampleParams()
	p.Passengers.Adults = 0
	_, err := svc.SearchFlights(context.Background(), p)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	provider.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)
}

func TestService_SearchFlights_NormalizesCodes(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, sampleParams()).Return(sampleRecords(), nil).Once()
	svc := newTestService(provider, newMemStore(), newTestClock())

	lower := sampleParams()
	lower.Departure, lower.Arrival = "cgk", "dps"

	first, err := svc.SearchFlights(context.Background(), lower)
	require.NoError(t, err)
	second, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)

	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	provider.AssertExpectations(t)
}

func TestService_SearchFlights_CacheFailuresDegrade(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil)
	store := newMemStore()
	store.getSearchErr = errors.New("connection refused")
	store.upsertSearchErr = errors.New("connection refused")
	store.upsertFlightErr = errors.New("connection refused")
	svc := newTestService(provider, store, newTestClock())

	res, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Len(t, res.Response.Flights, 3)

	// every per-flight write is attempted even when they all fail
	assert.Equal(t, 3, store.upsertFlightCalls)
}

func TestService_SearchFlights_SecondaryFailureKeepsPrimary(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil).Once()
	store := newMemStore()
	store.upsertFlightErr = errors.New("disk full")
	svc := newTestService(provider, store, newTestClock())

	_, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.Equal(t, 1, store.searchCount())

	res, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.True(t, res.CacheHit)
}

func TestService_SearchFlights_ExpiredDeleteFailureStillRefreshes(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil)
	store := newMemStore()
	clock := newTestClock()
	svc := newTestService(provider, store, clock)

	_, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)

	store.deleteSearchErr = errors.New("timeout")
	clock.Advance(time.Hour)

	res, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	provider.AssertNumberOfCalls(t, "SearchFlights", 2)
}

func TestService_SearchFlights_CorruptEntryIsMiss(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil).Once()
	store := newMemStore()
	clock := newTestClock()
	svc := newTestService(provider, store, clock)

	hash, err := Fingerprint(sampleParams())
	require.NoError(t, err)
	require.NoError(t, store.UpsertSearch(context.Background(), &CachedSearch{
		Hash:      hash,
		Params:    sampleParams(),
		Results:   json.RawMessage(`"not a response"`),
		CachedAt:  clock.Now(),
		ExpiresAt: clock.Now().Add(time.Minute),
	}))

	res, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Len(t, res.Response.Flights, 3)
}

func TestService_SearchFlights_Coalescing(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32

	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			calls.Add(1)
			<-release
		}).
		Return(sampleRecords(), nil)

	svc := newTestService(provider, newMemStore(), newTestClock(), WithCoalescing(true))

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*SearchResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.SearchFlights(context.Background(), sampleParams())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// late arrivals may see the stored entry instead of joining the flight
	assert.Equal(t, int32(1), calls.Load())
	for _, res := range results {
		require.NotNil(t, res)
		assert.Len(t, res.Response.Flights, 3)
	}
}

func TestService_GetFlightDetails_ServedFromSearchSnapshot(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil)
	svc := newTestService(provider, newMemStore(), newTestClock())

	_, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)

	rec, err := svc.GetFlightDetails(context.Background(), "ga404", "2025-08-01")
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[0], *rec)
	provider.AssertNotCalled(t, "GetFlightDetails", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetFlightDetails_MissCallsProviderAndCaches(t *testing.T) {
	want := sampleRecords()[1]
	provider := new(MockProvider)
	provider.On("GetFlightDetails", mock.Anything, "QZ7510", "2025-08-01").Return(&want, nil).Once()
	store := newMemStore()
	clock := newTestClock()
	svc := newTestService(provider, store, clock)

	rec, err := svc.GetFlightDetails(context.Background(), "QZ7510", "2025-08-01")
	require.NoError(t, err)
	assert.Equal(t, want, *rec)

	cf, err := store.GetFlight(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Nil(t, cf.Params)
	assert.Empty(t, cf.SearchHash)

	again, err := svc.GetFlightDetails(context.Background(), "QZ7510", "2025-08-01")
	require.NoError(t, err)
	assert.Equal(t, want, *again)
	provider.AssertExpectations(t)

	clock.Advance(31 * time.Minute)
	provider.On("GetFlightDetails", mock.Anything, "QZ7510", "2025-08-01").Return(&want, nil).Once()
	_, err = svc.GetFlightDetails(context.Background(), "QZ7510", "2025-08-01")
	require.NoError(t, err)
	provider.AssertNumberOfCalls(t, "GetFlightDetails", 2)
}

func TestService_GetFlightDetails_Errors(t *testing.T) {
	provider := new(MockProvider)
	provider.On("GetFlightDetails", mock.Anything, "GA999", "2025-08-01").Return(nil, ErrFlightNotFound)
	provider.On("GetFlightDetails", mock.Anything, "GA500", "2025-08-01").
		Return(nil, &ProviderError{Op: "lookup", Err: errors.New("timeout")})
	store := newMemStore()
	svc := newTestService(provider, store, newTestClock())

	_, err := svc.GetFlightDetails(context.Background(), "GA999", "2025-08-01")
	assert.ErrorIs(t, err, ErrFlightNotFound)

	_, err = svc.GetFlightDetails(context.Background(), "GA500", "2025-08-01")
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = svc.GetFlightDetails(context.Background(), "GA500", "01/08/2025")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	assert.Equal(t, 0, store.upsertFlightCalls)
}

func TestService_InvalidateCache(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil)
	store := newMemStore()
	svc := newTestService(provider, store, newTestClock())

	res, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)

	hash, err := svc.InvalidateCache(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.Equal(t, res.Fingerprint, hash)
	assert.Equal(t, 0, store.searchCount())

	// dropping a missing entry is fine
	_, err = svc.InvalidateCache(context.Background(), sampleParams())
	assert.NoError(t, err)

	store.deleteSearchErr = errors.New("read only")
	_, err = svc.InvalidateCache(context.Background(), sampleParams())
	assert.Error(t, err)
}

func TestService_CleanExpiredCache(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil)
	store := newMemStore()
	clock := newTestClock()
	rec := &countingRecorder{}
	svc := newTestService(provider, store, clock, WithMetrics(rec))

	_, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	other := sampleParams()
	other.Arrival = "SUB"
	_, err = svc.SearchFlights(context.Background(), other)
	require.NoError(t, err)

	clock.Advance(25 * time.Minute)
	res, err := svc.CleanExpiredCache(context.Background())
	require.NoError(t, err)

	// first search and its flights expired; the second overwrote the same
	// flight ids with a later expiry
	assert.Equal(t, CleanupResult{Searches: 1, Flights: 0}, res)
	assert.Equal(t, 1, store.searchCount())
	assert.Equal(t, res, rec.cleaned)

	store.deleteExpired = errors.New("locked")
	_, err = svc.CleanExpiredCache(context.Background())
	assert.Error(t, err)
}

func TestService_SearchFlights_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	provider := new(MockProvider)
	provider.On("SearchFlights", mock.Anything, mock.Anything).
		Return(nil, &ProviderError{Op: "search", Err: errors.New("timeout")}).Once()
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(sampleRecords(), nil).Once()
	svc := newTestService(provider, newMemStore(), newTestClock(), WithTracer(tp.Tracer("test")))

	_, _ = svc.SearchFlights(context.Background(), sampleParams())
	_, _ = svc.SearchFlights(context.Background(), sampleParams())
	_, _ = svc.SearchFlights(context.Background(), sampleParams())

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)

	hits := make([]bool, 0, len(spans))
	for _, s := range spans {
		assert.Equal(t, "flight.SearchFlights", s.Name)
		for _, kv := range s.Attributes {
			if kv.Key == "cache.hit" {
				hits = append(hits, kv.Value.AsBool())
			}
		}
	}
	assert.Equal(t, []bool{false, false, true}, hits)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
}

// blockingProvider holds searches until released and fails them as soon as
// the request context is done, the way the HTTP client does.
type blockingProvider struct {
	MockProvider
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (p *blockingProvider) SearchFlights(ctx context.Context, _ SearchParameters) ([]FlightRecord, error) {
	p.calls.Add(1)
	p.once.Do(func() { close(p.started) })
	select {
	case <-p.release:
		return sampleRecords(), nil
	case <-ctx.Done():
		return nil, &ProviderError{Op: "search", Err: ctx.Err()}
	}
}

func TestService_SearchFlights_CoalescedCallerCancelled(t *testing.T) {
	provider := &blockingProvider{started: make(chan struct{}), release: make(chan struct{})}
	svc := newTestService(provider, newMemStore(), newTestClock(), WithCoalescing(true))

	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		_, _ = svc.SearchFlights(ctxA, sampleParams())
	}()
	<-provider.started

	type outcome struct {
		res *SearchResult
		err error
	}
	resultB := make(chan outcome, 1)
	go func() {
		res, err := svc.SearchFlights(context.Background(), sampleParams())
		resultB <- outcome{res: res, err: err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelA()
	time.Sleep(20 * time.Millisecond)
	close(provider.release)

	got := <-resultB
	<-doneA
	require.NoError(t, got.err)
	assert.Len(t, got.res.Response.Flights, 3)
	assert.Equal(t, int32(1), provider.calls.Load())

	again, err := svc.SearchFlights(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, int32(1), provider.calls.Load())
}
