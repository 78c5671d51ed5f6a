package expenses

import (
	"context"
	"time"

	"github.com/MacTheAnon/DriverPro/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, input Expense) (Expense, error) {
	input.ID = uuid.NewString()
	if input.Category == "" {
		input.Category = "other"
	}
	if input.IncurredAt.IsZero() {
		input.IncurredAt = time.Now()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO expenses (id, user_id, amount_usd, category, note, incurred_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, input.ID, input.UserID, input.AmountUSD, input.Category, input.Note, input.IncurredAt)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Expense{}, err
	}
	return input, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Expense, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, amount_usd, category, note, incurred_at, created_at
		FROM expenses WHERE user_id=$1
		ORDER BY incurred_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.AmountUSD, &e.Category, &e.Note, &e.IncurredAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM expenses WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}

// Summarize totals the year-to-date deductions per category.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT category, COALESCE(SUM(amount_usd),0)
		FROM expenses
		WHERE user_id=$1 AND incurred_at >= date_trunc('year', now())
		GROUP BY category
	`, userID)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	sum := Summary{ByCategory: map[string]float64{}}
	for rows.Next() {
		var category string
		var amount float64
		if err := rows.Scan(&category, &amount); err != nil {
			return Summary{}, err
		}
		sum.ByCategory[category] = amount
		sum.TotalUSD += amount
	}
	return sum, nil
}
