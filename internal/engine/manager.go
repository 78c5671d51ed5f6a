package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/MacTheAnon/DriverPro/internal/geo"
	"github.com/MacTheAnon/DriverPro/internal/location"
	"github.com/MacTheAnon/DriverPro/internal/maintenance"
	"github.com/MacTheAnon/DriverPro/internal/profile"
	"github.com/MacTheAnon/DriverPro/internal/trips"

	"github.com/google/uuid"
)

// TripSink persists finished trip records. It must tolerate resubmission of
// the same record (the engine retries on failure).
type TripSink interface {
	Save(ctx context.Context, rec trips.Record) (trips.Record, error)
}

// ProfileStore is the slice of the profile service the engine needs.
type ProfileStore interface {
	GetOdometer(ctx context.Context, userID string) (float64, error)
	SetOdometer(ctx context.Context, userID string, miles float64) error
	GetSchedule(ctx context.Context, userID string) (profile.ScheduleConfig, error)
}

// PendingQueue is the engine's view of the durable background sample store:
// drained once per stop, cleared once per start.
type PendingQueue interface {
	Drain(ctx context.Context, userID string) ([]geo.Point, error)
	Clear(ctx context.Context, userID string) error
}

// Labeler resolves a human label for a trip's start point.
type Labeler interface {
	NearestLabel(ctx context.Context, userID string, p geo.Point) (string, error)
}

// Broadcaster fans live stat snapshots out to subscribed clients.
type Broadcaster interface {
	Broadcast(userID string, payload []byte)
}

// Config carries the engine's injected tunables.
type Config struct {
	MileageRateUSD  float64
	NoiseFloorMiles float64
	DedupEpsilon    time.Duration
	Intervals       []maintenance.Interval
}

// Deps wires the engine to its collaborators. Source and Queue are required;
// the rest degrade gracefully when nil.
type Deps struct {
	Source     location.Source
	Background location.Background
	Queue      PendingQueue
	Sink       TripSink
	Profile    ProfileStore
	Places     Labeler
	Hub        Broadcaster
}

// StartOptions controls one start() call.
type StartOptions struct {
	// Background requests OS-scheduled delivery for the trip. When the
	// capability is missing the whole start is aborted, not partially begun.
	Background bool
	// AutoStarted marks the session as geofence-initiated so that only a
	// matching geofence enter may auto-stop it.
	AutoStarted bool
}

// StopResult is what one stop() produced.
type StopResult struct {
	Record    trips.Record            `json:"record"`
	Alerts    []maintenance.AlertKind `json:"alerts,omitempty"`
	Submitted bool                    `json:"submitted"`
	Stopped   bool                    `json:"stopped"`
}

// Manager owns every live session and enforces the one-Tracking-session-per
// -user invariant. It is the only component that creates or destroys
// sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	held     map[string][]trips.Record

	cfg  Config
	deps Deps

	now func() time.Time
}

func NewManager(cfg Config, deps Deps) *Manager {
	return &Manager{
		sessions: map[string]*session{},
		held:     map[string][]trips.Record{},
		cfg:      cfg,
		deps:     deps,
		now:      time.Now,
	}
}

// Start opens a tracking session: clears stale state and orphaned pending
// samples, opens the foreground watch, and activates background delivery
// when requested. Fails closed on any missing capability.
func (m *Manager) Start(ctx context.Context, userID string, opts StartOptions) error {
	if m.cfg.MileageRateUSD <= 0 {
		return ErrNoMileageRate
	}

	m.mu.Lock()
	if existing, ok := m.sessions[userID]; ok {
		existing.mu.Lock()
		live := existing.status != StatusIdle
		existing.mu.Unlock()
		if live {
			m.mu.Unlock()
			return ErrAlreadyTracking
		}
	}

	s := &session{
		userID:      userID,
		status:      StatusIdle,
		autoStarted: opts.AutoStarted,
		acc:         NewAccumulator(m.cfg.NoiseFloorMiles),
	}
	m.sessions[userID] = s
	m.mu.Unlock()

	// Samples queued by a previous abnormal termination are discarded here,
	// mirroring the shipped behavior. They belong to a trip that was never
	// stopped; reconciling them into a recovered trip is an open product
	// question.
	if err := m.deps.Queue.Clear(ctx, userID); err != nil {
		m.dropSession(userID)
		return fmt.Errorf("clear pending samples: %w", err)
	}

	if m.deps.Profile != nil {
		if odo, err := m.deps.Profile.GetOdometer(ctx, userID); err == nil {
			s.startOdometer = odo
			s.hasOdometer = true
		} else {
			log.Printf("engine: odometer read failed for %s, deferring to stop: %v", userID, err)
		}
	}

	sub, err := m.deps.Source.Watch(ctx, userID, func(p geo.Point) {
		s.onSample(p, m.cfg.MileageRateUSD, m.broadcastFor(userID))
	})
	if err != nil {
		m.dropSession(userID)
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	if opts.Background && m.deps.Background != nil {
		if err := m.deps.Background.Activate(ctx, location.BackgroundDeliveryTask, userID); err != nil {
			sub.Close()
			m.dropSession(userID)
			return fmt.Errorf("%w: %v", ErrBackgroundPermissionDenied, err)
		}
	}

	s.mu.Lock()
	s.sub = sub
	s.startedAt = m.now()
	s.status = StatusTracking
	s.mu.Unlock()
	return nil
}

// Stop finalizes the session: reconciles foreground and background samples,
// replays distance over the merged route, classifies, persists the record,
// and advances the odometer exactly once. Stopping an idle user is a no-op
// reported through StopResult.Stopped, not an error.
//
// The session transitions to Idle regardless of sink outcome; a failed
// submission leaves the record held for Resubmit, never silently dropped.
func (m *Manager) Stop(ctx context.Context, userID string) (StopResult, error) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return StopResult{}, nil
	}

	s.mu.Lock()
	if s.status != StatusTracking {
		s.mu.Unlock()
		return StopResult{}, nil
	}
	s.status = StatusStopping
	sub := s.sub
	s.sub = nil
	route := s.route
	startedAt := s.startedAt
	gigIncome := s.gigIncomeUSD
	startOdometer := s.startOdometer
	hasOdometer := s.hasOdometer
	s.mu.Unlock()

	sub.Close()
	if m.deps.Background != nil {
		if err := m.deps.Background.Deactivate(ctx, location.BackgroundDeliveryTask, userID); err != nil {
			log.Printf("engine: background deactivate failed for %s: %v", userID, err)
		}
	}

	// Drain is atomic read-and-clear; a failed drain degrades to an empty
	// reconciliation with a warning rather than losing the whole trip.
	pendingPts, err := m.deps.Queue.Drain(ctx, userID)
	if err != nil {
		log.Printf("engine: pending drain failed for %s, assuming empty: %v", userID, err)
		pendingPts = nil
	}

	merged := Merge(route, pendingPts, m.cfg.DedupEpsilon, m.cfg.NoiseFloorMiles)
	miles := ReplayDistance(merged, m.cfg.NoiseFloorMiles)
	savings := miles * m.cfg.MileageRateUSD

	var gross, net float64
	if gigIncome != nil {
		gross = *gigIncome
		net = gross - savings
	}

	tripType := trips.TypePersonal
	if m.deps.Profile != nil {
		if schedule, err := m.deps.Profile.GetSchedule(ctx, userID); err == nil {
			tripType = Classify(startedAt, schedule)
		} else {
			log.Printf("engine: schedule read failed for %s, tagging personal: %v", userID, err)
		}
	}

	var startLabel string
	if m.deps.Places != nil && len(merged) > 0 {
		if label, err := m.deps.Places.NearestLabel(ctx, userID, merged[0]); err == nil {
			startLabel = label
		}
	}

	rec := trips.Record{
		ID:             uuid.NewString(),
		UserID:         userID,
		Miles:          miles,
		SavingsUSD:     savings,
		Type:           tripType,
		GrossIncomeUSD: gross,
		NetProfitUSD:   net,
		StartLabel:     startLabel,
		Route:          merged,
		StartedAt:      startedAt,
	}

	result := StopResult{Record: rec, Stopped: true}

	if saved, err := m.deps.Sink.Save(ctx, rec); err == nil {
		result.Record = saved
		result.Submitted = true
	} else {
		log.Printf("engine: trip submission failed for %s, holding record %s: %v", userID, rec.ID, err)
		m.mu.Lock()
		m.held[userID] = append(m.held[userID], rec)
		m.mu.Unlock()
	}

	result.Alerts = m.advanceOdometer(ctx, userID, startOdometer, hasOdometer, miles)

	s.mu.Lock()
	s.status = StatusIdle
	s.route = nil
	s.mu.Unlock()

	if broadcast := m.broadcastFor(userID); broadcast != nil {
		if payload, err := json.Marshal(result); err == nil {
			broadcast(payload)
		}
	}
	return result, nil
}

// advanceOdometer applies the trip distance to the profile odometer and
// reports any maintenance thresholds crossed. The odometer read from start
// is preferred; a start-time read failure falls back to reading here.
func (m *Manager) advanceOdometer(ctx context.Context, userID string, startOdometer float64, hasOdometer bool, miles float64) []maintenance.AlertKind {
	if m.deps.Profile == nil || miles <= 0 {
		return nil
	}

	before := startOdometer
	if !hasOdometer {
		odo, err := m.deps.Profile.GetOdometer(ctx, userID)
		if err != nil {
			log.Printf("engine: odometer unavailable for %s, skipping update: %v", userID, err)
			return nil
		}
		before = odo
	}

	after := before + miles
	if err := m.deps.Profile.SetOdometer(ctx, userID, after); err != nil {
		log.Printf("engine: odometer update failed for %s: %v", userID, err)
	}
	return maintenance.CheckThresholds(before, after, m.cfg.Intervals)
}

// OnSample feeds one foreground sample. Samples for users without a live
// session are ignored.
func (m *Manager) OnSample(userID string, p geo.Point) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return
	}
	s.onSample(p, m.cfg.MileageRateUSD, m.broadcastFor(userID))
}

// SetGigIncome records declared gig income for the live session so net
// profit tracks in real time.
func (m *Manager) SetGigIncome(userID string, usd float64) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return ErrNotTracking
	}
	s.mu.Lock()
	tracking := s.status == StatusTracking
	s.mu.Unlock()
	if !tracking {
		return ErrNotTracking
	}
	s.setGigIncome(usd)
	return nil
}

// Status returns a read-only snapshot for the presentation layer.
func (m *Manager) Status(userID string) Stats {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	held := len(m.held[userID]) > 0
	m.mu.Unlock()

	if !ok {
		return Stats{UserID: userID, Status: StatusIdle, HeldRecord: held}
	}
	s.mu.Lock()
	stats := s.statsLocked()
	s.mu.Unlock()
	stats.HeldRecord = held
	return stats
}

// Tracking reports whether the user has a live session.
func (m *Manager) Tracking(userID string) bool {
	return m.Status(userID).Status == StatusTracking
}

// AutoStarted reports whether the live session was geofence-initiated.
func (m *Manager) AutoStarted(userID string) bool {
	return m.Status(userID).AutoStarted
}

// Resubmit retries every held trip record against the sink, in order.
// Records that go through are released; the rest stay held.
func (m *Manager) Resubmit(ctx context.Context, userID string) ([]trips.Record, error) {
	m.mu.Lock()
	pending := m.held[userID]
	m.mu.Unlock()
	if len(pending) == 0 {
		return nil, ErrNothingHeld
	}

	var (
		saved   []trips.Record
		remains []trips.Record
		lastErr error
	)
	for _, rec := range pending {
		got, err := m.deps.Sink.Save(ctx, rec)
		if err != nil {
			remains = append(remains, rec)
			lastErr = err
			continue
		}
		saved = append(saved, got)
	}

	m.mu.Lock()
	if len(remains) == 0 {
		delete(m.held, userID)
	} else {
		m.held[userID] = remains
	}
	m.mu.Unlock()
	return saved, lastErr
}

// Discard drops all held trip records at the user's explicit request.
func (m *Manager) Discard(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.held[userID]) == 0 {
		return ErrNothingHeld
	}
	delete(m.held, userID)
	return nil
}

func (m *Manager) dropSession(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

func (m *Manager) broadcastFor(userID string) func([]byte) {
	if m.deps.Hub == nil {
		return nil
	}
	return func(payload []byte) {
		if payload != nil {
			m.deps.Hub.Broadcast(userID, payload)
		}
	}
}
