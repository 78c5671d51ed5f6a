package engine

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MacTheAnon/DriverPro/internal/location"
	"github.com/MacTheAnon/DriverPro/internal/maintenance"
	"github.com/MacTheAnon/DriverPro/internal/pending"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func newHandlerApp(t *testing.T) (*fiber.App, *fakeSink) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := pending.NewStore(client)
	feed := location.NewFeed()
	sink := &fakeSink{}
	mgr := NewManager(Config{
		MileageRateUSD:  0.675,
		NoiseFloorMiles: testNoiseFloor,
		DedupEpsilon:    time.Second,
		Intervals:       maintenance.DefaultIntervals(6000, 50000),
	}, Deps{
		Source:     feed,
		Background: feed,
		Queue:      store,
		Sink:       sink,
		Profile:    &fakeProfile{},
	})

	app := fiber.New()
	asDriver := func(c *fiber.Ctx) error {
		c.Locals("user_id", "driver-1")
		return c.Next()
	}
	RegisterRoutes(app.Group("/track"), mgr, feed, store, asDriver)
	return app, sink
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestTrackLifecycleOverHTTP(t *testing.T) {
	app, sink := newHandlerApp(t)

	resp := postJSON(t, app, "/track/start", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status %d", resp.StatusCode)
	}

	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	lat := 37.7749
	for i, feet := range []float64{0, 11, 25} {
		resp = postJSON(t, app, "/track/samples", samplePayload{
			Lat:        lat + (feet/5280.0)/milesPerDegLat,
			Lng:        -122.4194,
			CapturedAt: base.Add(time.Duration(i) * 20 * time.Second),
		})
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("sample status %d", resp.StatusCode)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/track/status", nil)
	statusResp, err := app.Test(req)
	if err != nil || statusResp.StatusCode != http.StatusOK {
		t.Fatalf("status: %v %d", err, statusResp.StatusCode)
	}
	var stats Stats
	if err := json.NewDecoder(statusResp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if stats.Status != StatusTracking || stats.RoutePoints != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	resp = postJSON(t, app, "/track/stop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop status %d", resp.StatusCode)
	}
	var result StopResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode stop: %v", err)
	}
	if !result.Stopped || !result.Submitted {
		t.Fatalf("unexpected stop result: %+v", result)
	}
	if len(sink.saved) != 1 {
		t.Fatalf("expected one saved record")
	}
}

func TestBackgroundBatchLandsInQueueOnly(t *testing.T) {
	app, sink := newHandlerApp(t)

	resp := postJSON(t, app, "/track/start", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status %d", resp.StatusCode)
	}

	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	batch := map[string]any{"samples": []samplePayload{
		{Lat: 37.7749, Lng: -122.4194, CapturedAt: base},
		{Lat: 37.7749 + (300.0/5280.0)/milesPerDegLat, Lng: -122.4194, CapturedAt: base.Add(time.Minute)},
	}}
	resp = postJSON(t, app, "/track/background/samples", batch)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("background ingest status %d", resp.StatusCode)
	}

	// Background delivery must not touch the live session.
	req := httptest.NewRequest(http.MethodGet, "/track/status", nil)
	statusResp, _ := app.Test(req)
	var stats Stats
	_ = json.NewDecoder(statusResp.Body).Decode(&stats)
	if stats.RoutePoints != 0 || stats.Miles != 0 {
		t.Fatalf("background batch mutated session: %+v", stats)
	}

	resp = postJSON(t, app, "/track/stop", nil)
	var result StopResult
	_ = json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Record.Route) != 2 {
		t.Fatalf("expected pending samples reconciled, got %d points", len(result.Record.Route))
	}
	if result.Record.Miles <= 0 {
		t.Fatalf("expected distance from background movement")
	}
	if len(sink.saved) != 1 {
		t.Fatalf("expected record persisted")
	}
}

func TestStartConflictOverHTTP(t *testing.T) {
	app, _ := newHandlerApp(t)

	if resp := postJSON(t, app, "/track/start", nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first start failed")
	}
	if resp := postJSON(t, app, "/track/start", nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", resp.StatusCode)
	}
}

func TestStopIdleOverHTTP(t *testing.T) {
	app, _ := newHandlerApp(t)
	resp := postJSON(t, app, "/track/stop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("idle stop status %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["stopped"] != false {
		t.Fatalf("expected stopped=false, got %v", body)
	}
}

func TestIncomeEndpoint(t *testing.T) {
	app, _ := newHandlerApp(t)

	if resp := postJSON(t, app, "/track/income", map[string]any{"gross_usd": 80.0}); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict before start, got %d", resp.StatusCode)
	}

	postJSON(t, app, "/track/start", nil)
	resp := postJSON(t, app, "/track/income", map[string]any{"gross_usd": 80.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("income status %d", resp.StatusCode)
	}
	var stats Stats
	_ = json.NewDecoder(resp.Body).Decode(&stats)
	if stats.GigIncomeUSD == nil || *stats.GigIncomeUSD != 80 {
		t.Fatalf("expected income recorded: %+v", stats)
	}
}

func TestDiscardWithoutHeldRecord(t *testing.T) {
	app, _ := newHandlerApp(t)
	resp := postJSON(t, app, "/track/discard", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestBadSamplePayload(t *testing.T) {
	app, _ := newHandlerApp(t)
	req := httptest.NewRequest(http.MethodPost, "/track/samples", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
