package aviationstack

import "fmt"

// FlightsResponse is the envelope returned by GET /flights.
type FlightsResponse struct {
	Pagination Pagination `json:"pagination"`
	Data       []Flight   `json:"data"`
	Error      *APIError  `json:"error,omitempty"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

type Flight struct {
	FlightDate   string     `json:"flight_date"`
	FlightStatus string     `json:"flight_status"`
	Departure    Endpoint   `json:"departure"`
	Arrival      Endpoint   `json:"arrival"`
	Airline      Airline    `json:"airline"`
	Flight       FlightInfo `json:"flight"`
	Aircraft     *Aircraft  `json:"aircraft"`
}

// Endpoint is one end of a flight leg. Scheduled is ISO-8601 with offset,
// e.g. "2025-08-01T06:00:00+00:00".
type Endpoint struct {
	Airport   string  `json:"airport"`
	Timezone  string  `json:"timezone"`
	IATA      string  `json:"iata"`
	ICAO      string  `json:"icao"`
	Terminal  *string `json:"terminal"`
	Gate      *string `json:"gate"`
	Delay     *int    `json:"delay"`
	Scheduled string  `json:"scheduled"`
	Estimated string  `json:"estimated"`
	Actual    *string `json:"actual"`
}

type Airline struct {
	Name string `json:"name"`
	IATA string `json:"iata"`
	ICAO string `json:"icao"`
}

type FlightInfo struct {
	Number string `json:"number"`
	IATA   string `json:"iata"`
	ICAO   string `json:"icao"`
}

type Aircraft struct {
	Registration string `json:"registration"`
	IATA         string `json:"iata"`
	ICAO         string `json:"icao"`
	ICAO24       string `json:"icao24"`
}

// APIError is the error object aviationstack embeds in failed responses.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("aviationstack: status %d", e.StatusCode)
	}
	return fmt.Sprintf("aviationstack: %s: %s", e.Code, e.Message)
}
