package flight

// searchPageLimit mirrors the provider request bound; responses are always a
// single page.
const searchPageLimit = 50

// BuildSearchResponse assembles pagination and filter metadata for flights.
// The departure time range is taken from the first and last flights in
// provider order rather than by scanning for min/max.
func BuildSearchResponse(flights []FlightRecord) *SearchResponse {
	if flights == nil {
		flights = []FlightRecord{}
	}

	airlines := make([]string, 0)
	seen := make(map[string]struct{})
	var priceRange PriceRange

	for i, f := range flights {
		if _, ok := seen[f.Airline.Name]; !ok {
			seen[f.Airline.Name] = struct{}{}
			airlines = append(airlines, f.Airline.Name)
		}

		price := f.Price.Economy
		if i == 0 || price < priceRange.Min {
			priceRange.Min = price
		}
		if i == 0 || price > priceRange.Max {
			priceRange.Max = price
		}
	}

	var timeRange DepartureTimeRange
	if len(flights) > 0 {
		timeRange.Earliest = flights[0].Departure.Time
		timeRange.Latest = flights[len(flights)-1].Departure.Time
	}

	return &SearchResponse{
		Flights: flights,
		Pagination: Pagination{
			Total:       len(flights),
			Page:        1,
			Limit:       searchPageLimit,
			HasNext:     false,
			HasPrevious: false,
		},
		Filters: Filters{
			Airlines:           airlines,
			PriceRange:         priceRange,
			DepartureTimeRange: timeRange,
		},
	}
}
