package flight

type FareClass string

const (
	FareClassEconomy  FareClass = "economy"
	FareClassBusiness FareClass = "business"
	FareClassFirst    FareClass = "first"
)

type TripType string

const (
	TripTypeOneWay    TripType = "one-way"
	TripTypeRoundTrip TripType = "round-trip"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusLanded    Status = "landed"
	StatusCancelled Status = "cancelled"
	StatusIncident  Status = "incident"
	StatusDiverted  Status = "diverted"
)

type Passengers struct {
	Adults   int `json:"adults" validate:"min=1,max=9"`
	Children int `json:"children" validate:"min=0,max=9"`
	Infants  int `json:"infants" validate:"min=0,max=9"`
}

// SearchParameters is the inbound search request. It is treated as an
// immutable value and used as the cache key source.
type SearchParameters struct {
	Departure     string     `json:"departure" validate:"required,len=3,alpha"`
	Arrival       string     `json:"arrival" validate:"required,len=3,alpha,nefield=Departure"`
	DepartureDate string     `json:"departureDate" validate:"required,datetime=2006-01-02"`
	ReturnDate    string     `json:"returnDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Passengers    Passengers `json:"passengers"`
	Class         FareClass  `json:"class" validate:"required,oneof=economy business first"`
	TripType      TripType   `json:"tripType" validate:"required,oneof=one-way round-trip"`
}

type Airline struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Logo string `json:"logo,omitempty"`
}

type Leg struct {
	Airport  string `json:"airport"`
	IATA     string `json:"iata"`
	Time     string `json:"time"`
	Terminal string `json:"terminal,omitempty"`
	Gate     string `json:"gate,omitempty"`
}

// PriceTable holds placeholder fares in IDR. Economy is always set.
type PriceTable struct {
	Economy  int64  `json:"economy"`
	Business *int64 `json:"business,omitempty"`
	First    *int64 `json:"first,omitempty"`
}

type Availability struct {
	Economy  int `json:"economy"`
	Business int `json:"business"`
	First    int `json:"first"`
}

// FlightRecord is one normalized flight offer. Records are built fresh from
// provider data and never mutated afterwards.
type FlightRecord struct {
	ID           string       `json:"id"`
	FlightNumber string       `json:"flightNumber"`
	Airline      Airline      `json:"airline"`
	Departure    Leg          `json:"departure"`
	Arrival      Leg          `json:"arrival"`
	Duration     string       `json:"duration"`
	Aircraft     string       `json:"aircraft"`
	Price        PriceTable   `json:"price"`
	Availability Availability `json:"availability"`
	Status       Status       `json:"status"`
}

type Pagination struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

type DepartureTimeRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

type Filters struct {
	Airlines           []string           `json:"airlines"`
	PriceRange         PriceRange         `json:"priceRange"`
	DepartureTimeRange DepartureTimeRange `json:"departureTimeRange"`
}

type SearchResponse struct {
	Flights    []FlightRecord `json:"flights"`
	Pagination Pagination     `json:"pagination"`
	Filters    Filters        `json:"filters"`
}

// SearchResult wraps a response with how it was served.
type SearchResult struct {
	Response    *SearchResponse
	CacheHit    bool
	Fingerprint string
}

type CleanupResult struct {
	Searches int64 `json:"searches"`
	Flights  int64 `json:"flights"`
}
