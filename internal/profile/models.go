package profile

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Profile is the driver's business identity and vehicle record.
type Profile struct {
	UserID       string    `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	BusinessName string    `json:"business_name"`
	TaxID        string    `json:"tax_id"`
	VehicleMake  string    `json:"vehicle_make"`
	VehicleModel string    `json:"vehicle_model"`
	VehicleYear  string    `json:"vehicle_year"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ScheduleConfig is the work-hours window used to auto-tag trips.
// Minutes are since local midnight, both bounds inclusive.
type ScheduleConfig struct {
	Enabled          bool `json:"enabled"`
	StartMinuteOfDay int  `json:"start_minute_of_day"`
	EndMinuteOfDay   int  `json:"end_minute_of_day"`
}

// GeofenceConfig is the home-base circle that auto-starts and auto-stops
// tracking on exit/enter.
type GeofenceConfig struct {
	Enabled      bool    `json:"enabled"`
	AnchorLat    float64 `json:"anchor_lat"`
	AnchorLng    float64 `json:"anchor_lng"`
	RadiusMeters float64 `json:"radius_meters"`
}

// ParseClock converts an "HH:MM" wall-clock string to minute-of-day.
// Settings are stored in that form; validation happens here at the boundary
// so nothing downstream sees a malformed schedule.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders a minute-of-day back to "HH:MM".
func FormatClock(minuteOfDay int) string {
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}
