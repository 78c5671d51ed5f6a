package places

import (
	"context"

	"github.com/MacTheAnon/DriverPro/internal/db"
	"github.com/MacTheAnon/DriverPro/internal/geo"

	"github.com/google/uuid"
)

// labelCutoffMiles is how far a trip start may be from a saved place and
// still borrow its name. Roughly one city block.
const labelCutoffMiles = 0.1

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, input Place) (Place, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO places (id, user_id, name, lat, lng)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, input.ID, input.UserID, input.Name, input.Lat, input.Lng)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Place{}, err
	}
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Place, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, lat, lng, created_at
		FROM places WHERE id=$1
	`, id)
	var p Place
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Lat, &p.Lng, &p.CreatedAt); err != nil {
		return Place{}, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Place) (Place, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Place{}, err
	}
	if patch.Name != "" {
		p.Name = patch.Name
	}
	if patch.Lat != 0 {
		p.Lat = patch.Lat
	}
	if patch.Lng != 0 {
		p.Lng = patch.Lng
	}

	_, err = s.db.Exec(ctx, `
		UPDATE places SET name=$2, lat=$3, lng=$4 WHERE id=$1
	`, p.ID, p.Name, p.Lat, p.Lng)
	if err != nil {
		return Place{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM places WHERE id=$1`, id)
	return err
}

func (s *Service) List(ctx context.Context, userID string) ([]Place, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, lat, lng, created_at
		FROM places WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Place
	for rows.Next() {
		var p Place
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Lat, &p.Lng, &p.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, nil
}

// NearestLabel returns the name of the closest saved place within the label
// cutoff, or "" when nothing saved is near the point. A driver rarely has
// more than a handful of places, so the distance pass runs in memory.
func (s *Service) NearestLabel(ctx context.Context, userID string, p geo.Point) (string, error) {
	saved, err := s.List(ctx, userID)
	if err != nil {
		return "", err
	}

	best := ""
	bestMiles := labelCutoffMiles
	for _, pl := range saved {
		d := geo.HaversineMiles(p.Lat, p.Lng, pl.Lat, pl.Lng)
		if d <= bestMiles {
			best = pl.Name
			bestMiles = d
		}
	}
	return best, nil
}
