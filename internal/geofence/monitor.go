package geofence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/MacTheAnon/DriverPro/internal/engine"
	"github.com/MacTheAnon/DriverPro/internal/profile"
)

// EventType is a region crossing reported by the platform.
type EventType string

const (
	EventEnter EventType = "enter"
	EventExit  EventType = "exit"
)

// RegionHandle identifies one registered circular region.
type RegionHandle string

var (
	// ErrPermissionDenied means region monitoring could not be acquired.
	// The monitor stays disarmed and tracking remains manual-only.
	ErrPermissionDenied = errors.New("region monitoring permission denied")

	// ErrNotArmed means no region is registered for the user.
	ErrNotArmed = errors.New("geofence not armed")

	// ErrUnknownRegion means an event referenced a handle the monitor never
	// registered.
	ErrUnknownRegion = errors.New("unknown geofence region")
)

// Registrar is the platform's region monitoring API.
type Registrar interface {
	Register(ctx context.Context, userID string, lat, lng, radiusM float64) (RegionHandle, error)
	Unregister(ctx context.Context, handle RegionHandle) error
}

// Sessions is the slice of the tracking engine the monitor drives. The
// monitor never computes distance; it only triggers the public start/stop
// contract.
type Sessions interface {
	Start(ctx context.Context, userID string, opts engine.StartOptions) error
	Stop(ctx context.Context, userID string) (engine.StopResult, error)
	Tracking(userID string) bool
	AutoStarted(userID string) bool
}

// ProfileStore persists the armed flag so the app reflects reality after a
// failed registration.
type ProfileStore interface {
	GetGeofence(ctx context.Context, userID string) (profile.GeofenceConfig, error)
	SaveGeofence(ctx context.Context, userID string, cfg profile.GeofenceConfig) error
	SetGeofenceActive(ctx context.Context, userID string, active bool) error
}

// Monitor arms a home-base circle per user and converts region crossings
// into session start/stop calls: leaving home starts a trip, returning home
// stops it — but only when the trip was auto-started.
type Monitor struct {
	mu       sync.Mutex
	armed    map[string]RegionHandle
	byHandle map[RegionHandle]string

	registrar Registrar
	sessions  Sessions
	profiles  ProfileStore
}

func NewMonitor(registrar Registrar, sessions Sessions, profiles ProfileStore) *Monitor {
	return &Monitor{
		armed:     map[string]RegionHandle{},
		byHandle:  map[RegionHandle]string{},
		registrar: registrar,
		sessions:  sessions,
		profiles:  profiles,
	}
}

// Arm registers the region and records the config. On a permission failure
// the stored config is flipped back to inactive so nothing ever pretends to
// be armed.
func (m *Monitor) Arm(ctx context.Context, userID string, cfg profile.GeofenceConfig) error {
	cfg.Enabled = true
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = 150
	}

	handle, err := m.registrar.Register(ctx, userID, cfg.AnchorLat, cfg.AnchorLng, cfg.RadiusMeters)
	if err != nil {
		if setErr := m.profiles.SetGeofenceActive(ctx, userID, false); setErr != nil {
			log.Printf("geofence: could not record disarmed state for %s: %v", userID, setErr)
		}
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	if err := m.profiles.SaveGeofence(ctx, userID, cfg); err != nil {
		_ = m.registrar.Unregister(ctx, handle)
		return fmt.Errorf("persist geofence config: %w", err)
	}

	m.mu.Lock()
	old, replaced := m.armed[userID]
	if replaced {
		delete(m.byHandle, old)
	}
	m.armed[userID] = handle
	m.byHandle[handle] = userID
	m.mu.Unlock()

	if replaced {
		if err := m.registrar.Unregister(ctx, old); err != nil {
			log.Printf("geofence: could not release replaced region for %s: %v", userID, err)
		}
	}
	return nil
}

// Disarm unregisters the region and marks the config inactive.
func (m *Monitor) Disarm(ctx context.Context, userID string) error {
	m.mu.Lock()
	handle, ok := m.armed[userID]
	if ok {
		delete(m.armed, userID)
		delete(m.byHandle, handle)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotArmed
	}

	if err := m.registrar.Unregister(ctx, handle); err != nil {
		log.Printf("geofence: unregister failed for %s: %v", userID, err)
	}
	return m.profiles.SetGeofenceActive(ctx, userID, false)
}

// Armed reports whether the user currently has a registered region.
func (m *Monitor) Armed(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.armed[userID]
	return ok
}

// HandleEvent reacts to a platform region crossing. Exit auto-starts a trip
// when nothing is tracking; enter auto-stops only a trip this monitor
// started. Manual trips are never stopped by a geofence.
func (m *Monitor) HandleEvent(ctx context.Context, handle RegionHandle, event EventType) error {
	m.mu.Lock()
	userID, ok := m.byHandle[handle]
	m.mu.Unlock()
	if !ok {
		return ErrUnknownRegion
	}

	switch event {
	case EventExit:
		if m.sessions.Tracking(userID) {
			return nil
		}
		if err := m.sessions.Start(ctx, userID, engine.StartOptions{Background: true, AutoStarted: true}); err != nil {
			return fmt.Errorf("geofence auto-start: %w", err)
		}
		return nil
	case EventEnter:
		if !m.sessions.Tracking(userID) || !m.sessions.AutoStarted(userID) {
			return nil
		}
		if _, err := m.sessions.Stop(ctx, userID); err != nil {
			return fmt.Errorf("geofence auto-stop: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown geofence event %q", event)
	}
}
