package profile

import (
	"context"
	"fmt"

	"github.com/MacTheAnon/DriverPro/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Get returns the driver's profile, creating an empty row on first read.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, display_name, business_name, tax_id,
		          vehicle_make, vehicle_model, vehicle_year, updated_at
	`, userID)

	var p Profile
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.BusinessName, &p.TaxID,
		&p.VehicleMake, &p.VehicleModel, &p.VehicleYear, &p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) Save(ctx context.Context, p Profile) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO profiles (user_id, display_name, business_name, tax_id,
		                      vehicle_make, vehicle_model, vehicle_year, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now())
		ON CONFLICT (user_id) DO UPDATE SET
			display_name=EXCLUDED.display_name,
			business_name=EXCLUDED.business_name,
			tax_id=EXCLUDED.tax_id,
			vehicle_make=EXCLUDED.vehicle_make,
			vehicle_model=EXCLUDED.vehicle_model,
			vehicle_year=EXCLUDED.vehicle_year,
			updated_at=now()
	`, p.UserID, p.DisplayName, p.BusinessName, p.TaxID,
		p.VehicleMake, p.VehicleModel, p.VehicleYear)
	return err
}

func (s *Service) GetOdometer(ctx context.Context, userID string) (float64, error) {
	var miles float64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(odometer_miles, 0) FROM profiles WHERE user_id=$1
	`, userID).Scan(&miles)
	if err != nil {
		return 0, err
	}
	return miles, nil
}

func (s *Service) SetOdometer(ctx context.Context, userID string, miles float64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE profiles SET odometer_miles=$2, updated_at=now() WHERE user_id=$1
	`, userID, miles)
	return err
}

// GetSchedule reads and validates the stored work-hours window. A row with a
// malformed clock string is a configuration error surfaced to the caller, not
// a silent Personal-only schedule.
func (s *Service) GetSchedule(ctx context.Context, userID string) (ScheduleConfig, error) {
	var (
		enabled    bool
		start, end string
	)
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(schedule_enabled, false),
		       COALESCE(work_start, '09:00'),
		       COALESCE(work_end, '17:00')
		FROM profiles WHERE user_id=$1
	`, userID).Scan(&enabled, &start, &end)
	if err != nil {
		return ScheduleConfig{}, err
	}

	startMin, err := ParseClock(start)
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("schedule start: %w", err)
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("schedule end: %w", err)
	}
	return ScheduleConfig{Enabled: enabled, StartMinuteOfDay: startMin, EndMinuteOfDay: endMin}, nil
}

func (s *Service) SaveSchedule(ctx context.Context, userID string, cfg ScheduleConfig) error {
	_, err := s.db.Exec(ctx, `
		UPDATE profiles
		SET schedule_enabled=$2, work_start=$3, work_end=$4, updated_at=now()
		WHERE user_id=$1
	`, userID, cfg.Enabled, FormatClock(cfg.StartMinuteOfDay), FormatClock(cfg.EndMinuteOfDay))
	return err
}

func (s *Service) GetGeofence(ctx context.Context, userID string) (GeofenceConfig, error) {
	var cfg GeofenceConfig
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(geofence_active, false),
		       COALESCE(home_lat, 0), COALESCE(home_lng, 0),
		       COALESCE(geofence_radius_m, 150)
		FROM profiles WHERE user_id=$1
	`, userID).Scan(&cfg.Enabled, &cfg.AnchorLat, &cfg.AnchorLng, &cfg.RadiusMeters)
	if err != nil {
		return GeofenceConfig{}, err
	}
	return cfg, nil
}

func (s *Service) SaveGeofence(ctx context.Context, userID string, cfg GeofenceConfig) error {
	_, err := s.db.Exec(ctx, `
		UPDATE profiles
		SET geofence_active=$2, home_lat=$3, home_lng=$4, geofence_radius_m=$5, updated_at=now()
		WHERE user_id=$1
	`, userID, cfg.Enabled, cfg.AnchorLat, cfg.AnchorLng, cfg.RadiusMeters)
	return err
}

func (s *Service) SetGeofenceActive(ctx context.Context, userID string, active bool) error {
	_, err := s.db.Exec(ctx, `
		UPDATE profiles SET geofence_active=$2, updated_at=now() WHERE user_id=$1
	`, userID, active)
	return err
}
