package location

import (
	"context"
	"errors"

	"github.com/MacTheAnon/DriverPro/internal/geo"
)

var (
	// ErrPermissionDenied means the capability was refused by the platform.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrUnavailable means no fix can be produced right now (no signal,
	// no hardware). Callers may keep waiting; samples simply stop arriving.
	ErrUnavailable = errors.New("location unavailable")
)

// TaskID keys a registered background delivery handler. Typed so wiring
// mistakes fail at compile time instead of via a mistyped global string.
type TaskID string

// BackgroundDeliveryTask is the one task this service registers.
const BackgroundDeliveryTask TaskID = "background-location-delivery"

// Source is the foreground location capability. Watch is a cancellable
// stream: the returned Subscription stops delivery when closed, and the
// engine never polls.
type Source interface {
	Watch(ctx context.Context, userID string, fn func(geo.Point)) (*Subscription, error)
	Current(ctx context.Context, userID string) (geo.Point, error)
}

// Background activates and deactivates the OS-scheduled delivery path for a
// registered task. Delivered batches reach the pending store outside the
// engine's call stack.
type Background interface {
	Activate(ctx context.Context, task TaskID, userID string) error
	Deactivate(ctx context.Context, task TaskID, userID string) error
}

// Subscription is the unsubscribe handle for one Watch call.
type Subscription struct {
	cancel func()
}

// Close stops sample delivery. Safe to call more than once.
func (s *Subscription) Close() {
	if s != nil && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
