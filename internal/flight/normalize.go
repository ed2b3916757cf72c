package flight

import (
	"fmt"
	"strings"
	"time"
	"tixgo/pkg/aviationstack"
)

var providerStatuses = map[string]Status{
	"scheduled": StatusScheduled,
	"active":    StatusActive,
	"landed":    StatusLanded,
	"cancelled": StatusCancelled,
	"incident":  StatusIncident,
	"diverted":  StatusDiverted,
}

type normalizer struct {
	pricer Pricer
	seats  SeatAllocator
}

func (n normalizer) normalize(f aviationstack.Flight) FlightRecord {
	id := flightID(f.Flight.IATA, f.FlightDate)

	aircraft := ""
	if f.Aircraft != nil {
		aircraft = f.Aircraft.IATA
	}

	return FlightRecord{
		ID:           id,
		FlightNumber: f.Flight.IATA,
		Airline: Airline{
			Name: f.Airline.Name,
			Code: f.Airline.IATA,
		},
		Departure:    toLeg(f.Departure),
		Arrival:      toLeg(f.Arrival),
		Duration:     formatDuration(scheduledDuration(f.Departure.Scheduled, f.Arrival.Scheduled)),
		Aircraft:     aircraft,
		Price:        n.pricer.Quote(f.Departure.IATA, f.Arrival.IATA),
		Availability: n.seats.Allocate(id),
		Status:       mapStatus(f.FlightStatus),
	}
}

func flightID(flightIATA, flightDate string) string {
	return strings.ToUpper(flightIATA) + "-" + flightDate
}

func toLeg(e aviationstack.Endpoint) Leg {
	leg := Leg{
		Airport: e.Airport,
		IATA:    e.IATA,
		Time:    e.Scheduled,
	}
	if e.Terminal != nil {
		leg.Terminal = *e.Terminal
	}
	if e.Gate != nil {
		leg.Gate = *e.Gate
	}
	return leg
}

func mapStatus(s string) Status {
	if status, ok := providerStatuses[strings.ToLower(s)]; ok {
		return status
	}
	return StatusScheduled
}

// scheduledDuration is arrival minus departure. A negative gap of less than a
// day is read as a date that was not rolled over past midnight; anything
// else that is negative or unparsable collapses to zero.
func scheduledDuration(departure, arrival string) time.Duration {
	dep, err := time.Parse(time.RFC3339, departure)
	if err != nil {
		return 0
	}
	arr, err := time.Parse(time.RFC3339, arrival)
	if err != nil {
		return 0
	}

	d := arr.Sub(dep)
	if d < 0 && d > -24*time.Hour {
		d += 24 * time.Hour
	}
	if d < 0 {
		return 0
	}
	return d
}

func formatDuration(d time.Duration) string {
	totalMinutes := int(d.Minutes())
	return fmt.Sprintf("%dh %dm", totalMinutes/60, totalMinutes%60)
}
