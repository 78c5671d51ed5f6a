package trips

import (
	"context"
	"encoding/json"

	"github.com/MacTheAnon/DriverPro/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Save persists a finished trip. The upsert keyed on the record ID makes a
// retried submission a no-op instead of a duplicate row.
func (s *Service) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	routeJSON, err := json.Marshal(rec.Route)
	if err != nil {
		return Record{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, user_id, miles, savings_usd, trip_type,
		                   gross_income_usd, net_profit_usd, start_label, route, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING created_at
	`, rec.ID, rec.UserID, rec.Miles, rec.SavingsUSD, string(rec.Type),
		rec.GrossIncomeUSD, rec.NetProfitUSD, rec.StartLabel, routeJSON, rec.StartedAt)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, miles, savings_usd, trip_type,
		       gross_income_usd, net_profit_usd, start_label, route, started_at, created_at
		FROM trips WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			tripType  string
			routeJSON []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Miles, &rec.SavingsUSD, &tripType,
			&rec.GrossIncomeUSD, &rec.NetProfitUSD, &rec.StartLabel, &routeJSON,
			&rec.StartedAt, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Type = TripType(tripType)
		if len(routeJSON) > 0 {
			if err := json.Unmarshal(routeJSON, &rec.Route); err != nil {
				return nil, err
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Service) Delete(ctx context.Context, userID, tripID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id=$1 AND user_id=$2`, tripID, userID)
	return err
}

// Summarize computes the dashboard aggregates: today's miles and savings plus
// the all-time deduction totals.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	sum := Summary{UserID: userID}
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(miles) FILTER (WHERE created_at >= date_trunc('day', now())), 0),
		       COALESCE(SUM(savings_usd) FILTER (WHERE created_at >= date_trunc('day', now())), 0),
		       COALESCE(SUM(miles), 0),
		       COALESCE(SUM(savings_usd), 0)
		FROM trips WHERE user_id=$1
	`, userID).Scan(&sum.TripCount, &sum.MilesToday, &sum.SavingsTodayUSD,
		&sum.TotalMiles, &sum.TotalDeductionUSD)
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}
