package engine

import "github.com/MacTheAnon/DriverPro/internal/geo"

// Accumulator folds consecutive location samples into cumulative mileage.
// Deltas below the noise floor are treated as zero movement: the point is
// still worth keeping for the route, it just does not count as distance.
// Pure state, no I/O.
type Accumulator struct {
	noiseFloorMiles float64
	last            geo.Point
	hasLast         bool
	miles           float64
}

func NewAccumulator(noiseFloorMiles float64) *Accumulator {
	return &Accumulator{noiseFloorMiles: noiseFloorMiles}
}

// Add feeds the next sample and returns the counted delta in miles
// (zero when the movement was filtered as jitter).
func (a *Accumulator) Add(p geo.Point) float64 {
	if !a.hasLast {
		a.last = p
		a.hasLast = true
		return 0
	}

	delta := geo.DistanceMiles(a.last, p)
	a.last = p
	if delta < a.noiseFloorMiles {
		return 0
	}
	a.miles += delta
	return delta
}

// Miles returns the cumulative counted distance.
func (a *Accumulator) Miles() float64 {
	return a.miles
}

// ReplayDistance runs a fresh accumulator over an already ordered route.
// Used at stop time, where the merged route may contain movement the
// incremental pass never saw.
func ReplayDistance(points []geo.Point, noiseFloorMiles float64) float64 {
	acc := NewAccumulator(noiseFloorMiles)
	for _, p := range points {
		acc.Add(p)
	}
	return acc.Miles()
}
