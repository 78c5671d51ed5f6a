package maintenance

import "math"

// AlertKind names a service task due after an odometer interval crossing.
type AlertKind string

const (
	AlertTireRotation AlertKind = "tire_rotation"
	AlertMajorService AlertKind = "major_service"
)

// Interval pairs an alert kind with its recurrence in odometer miles.
type Interval struct {
	Kind  AlertKind
	Miles float64
}

// DefaultIntervals returns the stock service schedule.
func DefaultIntervals(rotationMiles, serviceMiles float64) []Interval {
	if rotationMiles <= 0 {
		rotationMiles = 6000
	}
	if serviceMiles <= 0 {
		serviceMiles = 50000
	}
	return []Interval{
		{Kind: AlertTireRotation, Miles: rotationMiles},
		{Kind: AlertMajorService, Miles: serviceMiles},
	}
}

// CheckThresholds reports which intervals were crossed by an odometer update.
// An interval fires at most once per call no matter how many multiples a
// single trip covers, and never when the odometer did not advance past a
// multiple.
func CheckThresholds(oldOdometer, newOdometer float64, intervals []Interval) []AlertKind {
	if newOdometer <= oldOdometer {
		return nil
	}

	var alerts []AlertKind
	for _, iv := range intervals {
		if iv.Miles <= 0 {
			continue
		}
		if math.Floor(newOdometer/iv.Miles) > math.Floor(oldOdometer/iv.Miles) {
			alerts = append(alerts, iv.Kind)
		}
	}
	return alerts
}
