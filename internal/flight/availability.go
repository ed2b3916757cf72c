package flight

import (
	"hash/fnv"
	"math/rand/v2"
)

type seatRange struct{ min, max int }

var (
	economySeats  = seatRange{10, 59}
	businessSeats = seatRange{5, 24}
	firstSeats    = seatRange{2, 11}
)

// SeatAllocator produces seat counts for a flight. The provider does not
// report inventory, so counts are synthetic.
type SeatAllocator interface {
	Allocate(flightID string) Availability
}

// RandomSeats draws fresh counts on every call, so two normalizations of the
// same provider record may disagree.
type RandomSeats struct{}

func (RandomSeats) Allocate(string) Availability {
	return Availability{
		Economy:  economySeats.draw(rand.IntN),
		Business: businessSeats.draw(rand.IntN),
		First:    firstSeats.draw(rand.IntN),
	}
}

// SnapshotSeats seeds the draw from the flight id, giving one stable answer
// per flight snapshot.
type SnapshotSeats struct{}

func (SnapshotSeats) Allocate(flightID string) Availability {
	h := fnv.New64a()
	_, _ = h.Write([]byte(flightID))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	return Availability{
		Economy:  economySeats.draw(rng.IntN),
		Business: businessSeats.draw(rng.IntN),
		First:    firstSeats.draw(rng.IntN),
	}
}

// NewSeatAllocator maps the configured mode onto an allocator; anything but
// "snapshot" keeps the per-call random behaviour.
func NewSeatAllocator(mode string) SeatAllocator {
	if mode == "snapshot" {
		return SnapshotSeats{}
	}
	return RandomSeats{}
}

func (r seatRange) draw(intN func(int) int) int {
	return r.min + intN(r.max-r.min+1)
}
