package engine

import (
	"time"

	"github.com/MacTheAnon/DriverPro/internal/geo"
	"github.com/MacTheAnon/DriverPro/internal/profile"
	"github.com/MacTheAnon/DriverPro/internal/trips"
)

// Classify tags a trip Business when it starts inside the configured work
// window, bounds inclusive. A disabled schedule always yields Personal.
//
// Overnight windows (end before start) are not supported: the inclusive
// range check never matches, so every trip under such a schedule comes out
// Personal. Callers should reject end < start when saving a schedule.
func Classify(startedAt time.Time, cfg profile.ScheduleConfig) trips.TripType {
	if !cfg.Enabled {
		return trips.TypePersonal
	}
	m := geo.MinuteOfDay(startedAt)
	if cfg.StartMinuteOfDay <= m && m <= cfg.EndMinuteOfDay {
		return trips.TypeBusiness
	}
	return trips.TypePersonal
}
