package geo

import (
	"math"
	"testing"
	"time"
)

func TestHaversineZeroForSamePoint(t *testing.T) {
	d := HaversineMiles(37.7749, -122.4194, 37.7749, -122.4194)
	if d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestHaversineOneMinuteOfLatitude(t *testing.T) {
	// One minute of latitude on a sphere of R=3958.8 mi.
	want := 2 * math.Pi * 3958.8 / 360 / 60
	got := HaversineMiles(40.0, -74.0, 40.0+1.0/60.0, -74.0)
	if math.Abs(got-want)/want > 0.001 {
		t.Fatalf("expected ~%v mi, got %v", want, got)
	}
	if got < 1.14 || got > 1.16 {
		t.Fatalf("expected roughly 1.15 mi, got %v", got)
	}
}

func TestDistanceMiles(t *testing.T) {
	a := Point{Lat: -6.2, Lng: 106.816}
	b := Point{Lat: -6.9175, Lng: 107.6191}
	// Jakarta to Bandung ~ 70-85 miles
	d := DistanceMiles(a, b)
	if d < 62 || d > 87 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestMinuteOfDay(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 30, 59, 0, time.UTC)
	if m := MinuteOfDay(at); m != 9*60+30 {
		t.Fatalf("unexpected minute of day: %d", m)
	}
}
