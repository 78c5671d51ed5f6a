package engine

import (
	"sort"
	"time"

	"github.com/MacTheAnon/DriverPro/internal/geo"
)

// Merge combines the in-memory foreground route with samples that arrived
// through the background path while the watcher was not observed. The two
// producers can hold disjoint or overlapping time ranges, so the union is
// re-ordered by capture time (stable: ties keep their original relative
// order) and near-duplicates are dropped before the distance replay.
//
// Two points are duplicates when their timestamps fall within epsilon AND
// their separation is below the noise floor; the later one is dropped.
func Merge(route, pending []geo.Point, epsilon time.Duration, noiseFloorMiles float64) []geo.Point {
	combined := make([]geo.Point, 0, len(route)+len(pending))
	combined = append(combined, route...)
	combined = append(combined, pending...)
	if len(combined) == 0 {
		return combined
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].CapturedAt.Before(combined[j].CapturedAt)
	})

	merged := combined[:1]
	for _, p := range combined[1:] {
		last := merged[len(merged)-1]
		if p.CapturedAt.Sub(last.CapturedAt) <= epsilon &&
			geo.DistanceMiles(last, p) < noiseFloorMiles {
			continue
		}
		merged = append(merged, p)
	}
	return merged
}
