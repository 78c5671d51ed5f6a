package location

import (
	"context"
	"sync"

	"github.com/MacTheAnon/DriverPro/internal/geo"
)

// Feed implements Source for samples pushed over the HTTP surface: the driver
// app forwards its platform watch callbacks to the sample endpoint and Push
// fans them out to whichever session holds the watch. One watcher per user.
type Feed struct {
	mu       sync.Mutex
	watchers map[string]func(geo.Point)
	last     map[string]geo.Point
	bgActive map[string]bool
}

func NewFeed() *Feed {
	return &Feed{
		watchers: map[string]func(geo.Point){},
		last:     map[string]geo.Point{},
		bgActive: map[string]bool{},
	}
}

// Push delivers a foreground sample. Samples arriving while nobody watches
// are dropped apart from updating the last known fix; the background path is
// the durable one.
func (f *Feed) Push(userID string, p geo.Point) {
	f.mu.Lock()
	fn := f.watchers[userID]
	f.last[userID] = p
	f.mu.Unlock()

	if fn != nil {
		fn(p)
	}
}

func (f *Feed) Watch(_ context.Context, userID string, fn func(geo.Point)) (*Subscription, error) {
	f.mu.Lock()
	f.watchers[userID] = fn
	f.mu.Unlock()

	return &Subscription{cancel: func() {
		f.mu.Lock()
		if _, ok := f.watchers[userID]; ok {
			delete(f.watchers, userID)
		}
		f.mu.Unlock()
	}}, nil
}

func (f *Feed) Current(_ context.Context, userID string) (geo.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.last[userID]
	if !ok {
		return geo.Point{}, ErrUnavailable
	}
	return p, nil
}

// Activate marks the background delivery task live for the user. The actual
// batches arrive through the background ingest endpoint.
func (f *Feed) Activate(_ context.Context, task TaskID, userID string) error {
	if task != BackgroundDeliveryTask {
		return ErrUnavailable
	}
	f.mu.Lock()
	f.bgActive[userID] = true
	f.mu.Unlock()
	return nil
}

func (f *Feed) Deactivate(_ context.Context, task TaskID, userID string) error {
	if task != BackgroundDeliveryTask {
		return ErrUnavailable
	}
	f.mu.Lock()
	delete(f.bgActive, userID)
	f.mu.Unlock()
	return nil
}

// BackgroundActive reports whether background delivery is live for the user.
func (f *Feed) BackgroundActive(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bgActive[userID]
}
