package geo

import (
	"math"
	"time"
)

// earthRadiusMiles matches the IRS-substantiation grade precision the app
// targets; no road snapping is attempted.
const earthRadiusMiles = 3958.8

// Point is a single location sample. Produced only by a location source,
// never mutated afterwards.
type Point struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	CapturedAt time.Time `json:"captured_at"`
}

// HaversineMiles returns the great-circle distance between two points in
// statute miles.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceMiles is HaversineMiles over two Points.
func DistanceMiles(a, b Point) float64 {
	return HaversineMiles(a.Lat, a.Lng, b.Lat, b.Lng)
}

// MinuteOfDay converts a wall-clock time to minutes since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
