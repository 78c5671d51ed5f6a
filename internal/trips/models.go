package trips

import (
	"time"

	"github.com/MacTheAnon/DriverPro/internal/geo"
)

// TripType tags a trip for deduction purposes.
type TripType string

const (
	TypeBusiness TripType = "business"
	TypePersonal TripType = "personal"
)

// Record is one finished trip. Immutable once written; rows disappear only
// through explicit user deletion.
type Record struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Miles          float64     `json:"miles"`
	SavingsUSD     float64     `json:"savings_usd"`
	Type           TripType    `json:"type"`
	GrossIncomeUSD float64     `json:"gross_income_usd"`
	NetProfitUSD   float64     `json:"net_profit_usd"`
	StartLabel     string      `json:"start_label"`
	Route          []geo.Point `json:"route"`
	StartedAt      time.Time   `json:"started_at"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Summary aggregates a driver's deduction position for the dashboard.
type Summary struct {
	UserID            string  `json:"user_id"`
	TripCount         int     `json:"trip_count"`
	MilesToday        float64 `json:"miles_today"`
	SavingsTodayUSD   float64 `json:"savings_today_usd"`
	TotalMiles        float64 `json:"total_miles"`
	TotalDeductionUSD float64 `json:"total_deduction_usd"`
}
