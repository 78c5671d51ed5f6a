package places

import (
	"context"
	"testing"
	"time"

	"github.com/MacTheAnon/DriverPro/internal/geo"

	"github.com/pashagolub/pgxmock/v3"
)

func TestPlaceCRUD(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO places`).
		WithArgs(pgxmock.AnyArg(), "driver-1", "Home Base", 37.77, -122.41).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	svc := NewService(mock)
	p, err := svc.Create(context.Background(), Place{
		UserID: "driver-1",
		Name:   "Home Base",
		Lat:    37.77,
		Lng:    -122.41,
	})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected a generated id")
	}

	mock.ExpectQuery(`SELECT id, user_id, name, lat, lng, created_at`).
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "lat", "lng", "created_at"}).
			AddRow(p.ID, p.UserID, p.Name, p.Lat, p.Lng, p.CreatedAt))

	loaded, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get place: %v", err)
	}
	if loaded.Name != "Home Base" {
		t.Fatalf("unexpected place %+v", loaded)
	}

	mock.ExpectQuery(`SELECT id, user_id, name, lat, lng, created_at`).
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "lat", "lng", "created_at"}).
			AddRow(p.ID, p.UserID, p.Name, p.Lat, p.Lng, p.CreatedAt))

	mock.ExpectExec(`UPDATE places`).
		WithArgs(p.ID, "Depot", p.Lat, p.Lng).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := svc.Update(context.Background(), p.ID, Place{Name: "Depot"})
	if err != nil {
		t.Fatalf("update place: %v", err)
	}
	if updated.Name != "Depot" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}

	mock.ExpectExec(`DELETE FROM places`).WithArgs(p.ID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("delete place: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func placeRows(userID string, pls ...Place) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "user_id", "name", "lat", "lng", "created_at"})
	for _, p := range pls {
		rows.AddRow(p.ID, userID, p.Name, p.Lat, p.Lng, time.Now())
	}
	return rows
}

func TestNearestLabel(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()
	svc := NewService(mock)

	home := Place{ID: "p1", Name: "Home Base", Lat: 37.7700, Lng: -122.4100}
	depot := Place{ID: "p2", Name: "Depot", Lat: 37.7710, Lng: -122.4100}

	// A point a few feet from home should borrow its name even though the
	// depot is also saved.
	mock.ExpectQuery(`SELECT id, user_id, name, lat, lng, created_at`).
		WithArgs("driver-1").
		WillReturnRows(placeRows("driver-1", home, depot))

	label, err := svc.NearestLabel(context.Background(), "driver-1", geo.Point{Lat: 37.77001, Lng: -122.41})
	if err != nil {
		t.Fatalf("nearest label: %v", err)
	}
	if label != "Home Base" {
		t.Fatalf("label = %q, want Home Base", label)
	}

	// A point far from every saved place gets no label.
	mock.ExpectQuery(`SELECT id, user_id, name, lat, lng, created_at`).
		WithArgs("driver-1").
		WillReturnRows(placeRows("driver-1", home, depot))

	label, err = svc.NearestLabel(context.Background(), "driver-1", geo.Point{Lat: 38.5, Lng: -121.5})
	if err != nil {
		t.Fatalf("nearest label: %v", err)
	}
	if label != "" {
		t.Fatalf("label = %q, want empty", label)
	}

	// No saved places at all.
	mock.ExpectQuery(`SELECT id, user_id, name, lat, lng, created_at`).
		WithArgs("driver-2").
		WillReturnRows(placeRows("driver-2"))

	label, err = svc.NearestLabel(context.Background(), "driver-2", geo.Point{Lat: 37.77, Lng: -122.41})
	if err != nil {
		t.Fatalf("nearest label: %v", err)
	}
	if label != "" {
		t.Fatalf("label = %q, want empty", label)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
