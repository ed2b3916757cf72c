package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Recorder mirrors the flight cache measurements as OTel instruments so they
// reach the collector next to the traces.
type Recorder struct {
	lookups  otelmetric.Int64Counter
	calls    otelmetric.Int64Counter
	latency  otelmetric.Float64Histogram
	cleanups otelmetric.Int64Counter
}

func NewRecorder(meter otelmetric.Meter) (*Recorder, error) {
	lookups, err := meter.Int64Counter("flight.cache.lookups",
		otelmetric.WithDescription("Search cache lookups by result"))
	if err != nil {
		return nil, err
	}
	calls, err := meter.Int64Counter("flight.provider.calls",
		otelmetric.WithDescription("Flight data provider calls"))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("flight.provider.duration",
		otelmetric.WithUnit("s"),
		otelmetric.WithDescription("Flight data provider call latency"))
	if err != nil {
		return nil, err
	}
	cleanups, err := meter.Int64Counter("flight.cache.cleanup.removed",
		otelmetric.WithDescription("Expired cache rows removed"))
	if err != nil {
		return nil, err
	}

	return &Recorder{
		lookups:  lookups,
		calls:    calls,
		latency:  latency,
		cleanups: cleanups,
	}, nil
}

func (r *Recorder) ObserveCacheLookup(result string) {
	r.lookups.Add(context.Background(), 1,
		otelmetric.WithAttributes(attribute.String("result", result)))
}

func (r *Recorder) ObserveProviderCall(op string, err error, elapsed time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", op),
		attribute.Bool("error", err != nil),
	)
	r.calls.Add(context.Background(), 1, attrs)
	r.latency.Record(context.Background(), elapsed.Seconds(), attrs)
}

func (r *Recorder) ObserveCleanup(searches, flights int64) {
	r.cleanups.Add(context.Background(), searches,
		otelmetric.WithAttributes(attribute.String("table", "flight_search_cache")))
	r.cleanups.Add(context.Background(), flights,
		otelmetric.WithAttributes(attribute.String("table", "flight_cache")))
}
