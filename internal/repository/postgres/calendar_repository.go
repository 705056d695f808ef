package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/replanhq/replan/internal/domain"
)

type calendarRepository struct {
	db *DB
}

func NewCalendarRepository(db *DB) *calendarRepository {
	return &calendarRepository{db: db}
}

// GetPeriods returns up to count planning periods starting at or after from,
// ascending by start date. Zero or negative count falls back to a one-year
// weekly horizon.
func (r *calendarRepository) GetPeriods(ctx context.Context, from time.Time, count int) ([]domain.Period, error) {
	if count <= 0 {
		count = 52
	}

	query := `
		SELECT id, start_date
		FROM planning_periods
		WHERE start_date >= $1
		ORDER BY start_date ASC
		LIMIT $2
	`

	var periods []domain.Period
	err := r.db.guard(ctx, func(ctx context.Context) error {
		return sqlx.SelectContext(ctx, r.db, &periods, query, from, count)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list planning periods: %w", err)
	}

	return periods, nil
}
