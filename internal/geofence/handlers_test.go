package geofence

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MacTheAnon/DriverPro/internal/profile"

	"github.com/gofiber/fiber/v2"
)

func geofenceApp(t *testing.T, reg Registrar) (*fiber.App, *Monitor, *fakeSessions) {
	t.Helper()
	sessions := &fakeSessions{}
	profiles := &fakeGeofenceProfiles{cfg: profile.GeofenceConfig{RadiusMeters: 150}}
	m := NewMonitor(reg, sessions, profiles)

	app := fiber.New()
	RegisterRoutes(app, m, func(c *fiber.Ctx) error {
		c.Locals("user_id", "driver-1")
		return c.Next()
	})
	return app, m, sessions
}

func TestArmDisarmHandlers(t *testing.T) {
	app, m, _ := geofenceApp(t, newFakeRegistrar())

	body, _ := json.Marshal(armPayload{Lat: 37.77, Lng: -122.41, RadiusMeters: 200})
	req := httptest.NewRequest(http.MethodPost, "/geofence/arm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("arm: %v status %d", err, resp.StatusCode)
	}
	if !m.Armed("driver-1") {
		t.Fatal("monitor not armed after arm request")
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/geofence/", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %v status %d", err, resp.StatusCode)
	}
	var status struct {
		Armed bool `json:"armed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Armed {
		t.Fatal("status reports disarmed")
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/geofence/disarm", nil))
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("disarm: %v status %d", err, resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/geofence/disarm", nil))
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second disarm: %v status %d, want 404", err, resp.StatusCode)
	}
}

func TestArmHandlerPermissionDenied(t *testing.T) {
	reg := newFakeRegistrar()
	reg.denied = true
	app, m, _ := geofenceApp(t, reg)

	body, _ := json.Marshal(armPayload{Lat: 37.77, Lng: -122.41})
	req := httptest.NewRequest(http.MethodPost, "/geofence/arm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("denied arm: %v status %d, want 403", err, resp.StatusCode)
	}
	if m.Armed("driver-1") {
		t.Fatal("monitor armed despite denial")
	}
}

func TestEventsHandler(t *testing.T) {
	app, m, sessions := geofenceApp(t, newFakeRegistrar())

	body, _ := json.Marshal(armPayload{Lat: 37.77, Lng: -122.41})
	req := httptest.NewRequest(http.MethodPost, "/geofence/arm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if resp, err := app.Test(req); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("arm failed")
	}

	m.mu.Lock()
	handle := m.armed["driver-1"]
	m.mu.Unlock()

	body, _ = json.Marshal(eventPayload{Handle: string(handle), Event: string(EventExit)})
	req = httptest.NewRequest(http.MethodPost, "/geofence/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("exit event: %v status %d", err, resp.StatusCode)
	}
	if !sessions.tracking {
		t.Fatal("exit event did not start tracking")
	}

	body, _ = json.Marshal(eventPayload{Handle: "bogus", Event: string(EventEnter)})
	req = httptest.NewRequest(http.MethodPost, "/geofence/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown region event: %v status %d, want 404", err, resp.StatusCode)
	}
}
