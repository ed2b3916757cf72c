package flight

import (
	"context"
	"strings"
	"tixgo/pkg/aviationstack"
	"tixgo/pkg/logger"
)

// ProviderClient is the slice of the aviationstack client the adapter needs.
type ProviderClient interface {
	Flights(ctx context.Context, q aviationstack.FlightsQuery) (*aviationstack.FlightsResponse, error)
}

// Adapter turns provider records into FlightRecords. It either returns the
// full mapped result or an error; never a partial list.
type Adapter struct {
	client ProviderClient
	norm   normalizer
	logger logger.Logger
}

func NewAdapter(client ProviderClient, pricer Pricer, seats SeatAllocator, log logger.Logger) *Adapter {
	if pricer == nil {
		pricer = NewRouteHashPricer()
	}
	if seats == nil {
		seats = RandomSeats{}
	}
	return &Adapter{
		client: client,
		norm:   normalizer{pricer: pricer, seats: seats},
		logger: log,
	}
}

func (a *Adapter) SearchFlights(ctx context.Context, params SearchParameters) ([]FlightRecord, error) {
	resp, err := a.client.Flights(ctx, aviationstack.FlightsQuery{
		DepIATA:      params.Departure,
		ArrIATA:      params.Arrival,
		FlightStatus: string(StatusScheduled),
		Limit:        aviationstack.DefaultSearchLimit,
	})
	if err != nil {
		a.logger.Error("provider search failed",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "route", Value: params.Departure + "->" + params.Arrival},
		)
		return nil, &ProviderError{Op: "search", Err: err}
	}

	flights := make([]FlightRecord, 0, len(resp.Data))
	for _, f := range resp.Data {
		flights = append(flights, a.norm.normalize(f))
	}
	return flights, nil
}

// GetFlightDetails returns ErrFlightNotFound when the provider has no match,
// which is distinct from a provider failure.
func (a *Adapter) GetFlightDetails(ctx context.Context, flightNumber, date string) (*FlightRecord, error) {
	resp, err := a.client.Flights(ctx, aviationstack.FlightsQuery{
		FlightIATA: strings.ToUpper(flightNumber),
		FlightDate: date,
	})
	if err != nil {
		a.logger.Error("provider flight lookup failed",
			logger.Field{Key: "err", Value: err},
			logger.Field{Key: "flight_number", Value: flightNumber},
			logger.Field{Key: "date", Value: date},
		)
		return nil, &ProviderError{Op: "lookup", Err: err}
	}

	if len(resp.Data) == 0 {
		return nil, ErrFlightNotFound
	}

	record := a.norm.normalize(resp.Data[0])
	return &record, nil
}
