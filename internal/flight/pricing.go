package flight

import "math"

// Pricer quotes fares for a route. The provider carries no fare data, so the
// default implementation is a placeholder, not a fare engine.
type Pricer interface {
	Quote(departureIATA, arrivalIATA string) PriceTable
}

// RouteHashPricer derives a stable economy fare from a hash of the route
// codes. Business and first are flat multiples of economy; the multipliers
// are stand-ins and carry no domain meaning.
type RouteHashPricer struct {
	Base               int64
	Spread             int64
	BusinessMultiplier float64
	FirstMultiplier    float64
}

func NewRouteHashPricer() RouteHashPricer {
	return RouteHashPricer{
		Base:               500_000,
		Spread:             1_000_000,
		BusinessMultiplier: 2.5,
		FirstMultiplier:    4,
	}
}

func (p RouteHashPricer) Quote(departureIATA, arrivalIATA string) PriceTable {
	h := int64(routeHash(departureIATA + arrivalIATA))
	if h < 0 {
		h = -h
	}

	economy := p.Base
	if p.Spread > 0 {
		economy += h % p.Spread
	}

	business := int64(math.Round(float64(economy) * p.BusinessMultiplier))
	first := int64(math.Round(float64(economy) * p.FirstMultiplier))

	return PriceTable{
		Economy:  economy,
		Business: &business,
		First:    &first,
	}
}

// routeHash is the classic 31-multiplier string hash folded into 32 bits.
func routeHash(s string) int32 {
	var h int32
	for _, r := range s {
		h = (h << 5) - h + int32(r)
	}
	return h
}
