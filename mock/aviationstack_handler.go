package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type FlightsResponse struct {
	Pagination Pagination `json:"pagination"`
	Data       []Flight   `json:"data"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

type Flight struct {
	FlightDate   string          `json:"flight_date"`
	FlightStatus string          `json:"flight_status"`
	Departure    Endpoint        `json:"departure"`
	Arrival      Endpoint        `json:"arrival"`
	Airline      json.RawMessage `json:"airline"`
	Flight       FlightInfo      `json:"flight"`
	Aircraft     json.RawMessage `json:"aircraft"`
}

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

type FlightInfo struct {
	Number string `json:"number"`
	IATA   string `json:"iata"`
	ICAO   string `json:"icao"`
}

// FlightsHandler serves GET /v1/flights with the query filters the real API
// supports. MOCK_FAILURE_RATE (0..1) makes a share of calls fail with 500.
func FlightsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	if q.Get("access_key") == "" {
		writeError(w, http.StatusUnauthorized, "missing_access_key", "You have not supplied an API Access Key.")
		return
	}

	if rate, err := strconv.ParseFloat(os.Getenv("MOCK_FAILURE_RATE"), 64); err == nil && rand.Float64() < rate {
		writeError(w, http.StatusInternalServerError, "internal_error", "Simulated upstream failure.")
		return
	}

	data, err := os.ReadFile("mock/files/aviationstack_flights.json")
	if err != nil {
		http.Error(w, "Failed to read flight data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var flights []Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		http.Error(w, "Failed to parse flight data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	limit := 100
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		limit = l
	}

	filtered := make([]Flight, 0)
	for _, f := range flights {
		if v := q.Get("dep_iata"); v != "" && !strings.EqualFold(f.Departure.IATA, v) {
			continue
		}
		if v := q.Get("arr_iata"); v != "" && !strings.EqualFold(f.Arrival.IATA, v) {
			continue
		}
		if v := q.Get("flight_status"); v != "" && !strings.EqualFold(f.FlightStatus, v) {
			continue
		}
		if v := q.Get("flight_iata"); v != "" && !strings.EqualFold(f.Flight.IATA, v) {
			continue
		}
		if v := q.Get("flight_date"); v != "" && f.FlightDate != v {
			continue
		}
		filtered = append(filtered, f)
	}

	total := len(filtered)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	delay := 50 + rand.Intn(51) // 50 to 100ms
	time.Sleep(time.Duration(delay) * time.Millisecond)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FlightsResponse{
		Pagination: Pagination{Limit: limit, Count: len(filtered), Total: total},
		Data:       filtered,
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: APIError{Code: code, Message: message}})
}
