package expenses

import "time"

// Expense is a deductible cost logged by the driver outside of mileage:
// fuel, tolls, phone plan, supplies.
type Expense struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AmountUSD  float64   `json:"amount_usd"`
	Category   string    `json:"category"`
	Note       string    `json:"note"`
	IncurredAt time.Time `json:"incurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary aggregates deductions per category plus the overall total.
type Summary struct {
	TotalUSD   float64            `json:"total_usd"`
	ByCategory map[string]float64 `json:"by_category"`
}
