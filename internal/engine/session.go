package engine

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/MacTheAnon/DriverPro/internal/geo"
	"github.com/MacTheAnon/DriverPro/internal/location"
)

// Status is the trip session lifecycle state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusTracking Status = "tracking"
	StatusStopping Status = "stopping"
)

// Stats is the read-only snapshot a presentation layer polls or subscribes
// to. It is also the payload broadcast over the stream hub after every
// counted sample.
type Stats struct {
	UserID       string    `json:"user_id"`
	Status       Status    `json:"status"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	Miles        float64   `json:"miles"`
	SavingsUSD   float64   `json:"savings_usd"`
	GigIncomeUSD *float64  `json:"gig_income_usd,omitempty"`
	NetProfitUSD float64   `json:"net_profit_usd"`
	RoutePoints  int       `json:"route_points"`
	AutoStarted  bool      `json:"auto_started"`
	HeldRecord   bool      `json:"held_record"`
}

// session is one live start-to-stop tracking interval. Foreground samples
// mutate it under its own mutex; background samples never touch it — they
// land in the durable pending queue and are folded in at stop.
type session struct {
	mu sync.Mutex

	userID      string
	status      Status
	startedAt   time.Time
	autoStarted bool

	route []geo.Point
	acc   *Accumulator

	savingsUSD   float64
	gigIncomeUSD *float64
	netProfitUSD float64

	// startOdometer is the profile odometer captured at start.
	// hasOdometer is false when that read failed; stop re-reads then.
	startOdometer float64
	hasOdometer   bool

	sub *location.Subscription
}

func (s *session) onSample(p geo.Point, rateUSD float64, broadcast func([]byte)) {
	s.mu.Lock()
	if s.status != StatusTracking {
		s.mu.Unlock()
		return
	}

	s.route = append(s.route, p)
	delta := s.acc.Add(p)
	if delta > 0 {
		s.savingsUSD += delta * rateUSD
		s.recomputeNetLocked()
	}
	payload := s.statsPayloadLocked()
	s.mu.Unlock()

	if broadcast != nil {
		broadcast(payload)
	}
}

func (s *session) setGigIncome(usd float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gigIncomeUSD = &usd
	s.recomputeNetLocked()
}

// recomputeNetLocked derives net profit as declared gross income minus the
// vehicle cost estimate (the accumulated deduction value).
func (s *session) recomputeNetLocked() {
	if s.gigIncomeUSD == nil {
		s.netProfitUSD = 0
		return
	}
	s.netProfitUSD = *s.gigIncomeUSD - s.savingsUSD
}

func (s *session) statsLocked() Stats {
	return Stats{
		UserID:       s.userID,
		Status:       s.status,
		StartedAt:    s.startedAt,
		Miles:        s.acc.Miles(),
		SavingsUSD:   s.savingsUSD,
		GigIncomeUSD: s.gigIncomeUSD,
		NetProfitUSD: s.netProfitUSD,
		RoutePoints:  len(s.route),
		AutoStarted:  s.autoStarted,
	}
}

func (s *session) statsPayloadLocked() []byte {
	b, err := json.Marshal(s.statsLocked())
	if err != nil {
		return nil
	}
	return b
}
