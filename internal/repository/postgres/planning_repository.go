package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/replanhq/replan/internal/domain"
)

type planningRepository struct {
	db *DB
}

func NewPlanningRepository(db *DB) *planningRepository {
	return &planningRepository{db: db}
}

// GetPlanningRecord loads the planning parameters for an item at a location.
// A missing record is reported as an error; everything downstream assumes a
// record exists before the calculator runs.
func (r *planningRepository) GetPlanningRecord(ctx context.Context, itemID int64, location string) (*domain.PlanningRow, error) {
	query := `
		SELECT
			item_id,
			location,
			reordering_policy,
			COALESCE(reorder_point, 0) AS reorder_point,
			COALESCE(reorder_quantity, 0) AS reorder_quantity,
			COALESCE(demand_accumulation_period, 0) AS demand_accumulation_period,
			COALESCE(demand_safety_stock, 0) AS demand_safety_stock,
			COALESCE(maximum_inventory, 0) AS maximum_inventory,
			COALESCE(lead_time_days, 0) AS lead_time_days,
			COALESCE(lot_size, 0) AS lot_size,
			COALESCE(minimum_order_quantity, 0) AS minimum_order_quantity,
			COALESCE(maximum_order_quantity, 0) AS maximum_order_quantity,
			COALESCE(order_multiple, 0) AS order_multiple,
			COALESCE(preferred_supplier_id, 0) AS preferred_supplier_id,
			COALESCE(suppliers, '[]'::jsonb) AS suppliers
		FROM item_planning
		WHERE item_id = $1 AND location = $2
	`

	var row domain.PlanningRow
	err := r.db.guard(ctx, func(ctx context.Context) error {
		return sqlx.GetContext(ctx, r.db, &row, query, itemID, location)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no planning record for item %d at %s", itemID, location)
		}
		return nil, fmt.Errorf("failed to get planning record: %w", err)
	}

	return &row, nil
}

// GetProjections returns the item's net projected inventory per period,
// ordered by the planning calendar.
func (r *planningRepository) GetProjections(ctx context.Context, itemID int64, location string) ([]domain.ProjectionRow, error) {
	query := `
		SELECT pr.period_id, COALESCE(pr.quantity, 0) AS quantity
		FROM inventory_projections pr
		JOIN planning_periods pp ON pp.id = pr.period_id
		WHERE pr.item_id = $1 AND pr.location = $2
		ORDER BY pp.start_date ASC
	`

	var rows []domain.ProjectionRow
	err := r.db.guard(ctx, func(ctx context.Context) error {
		return sqlx.SelectContext(ctx, r.db, &rows, query, itemID, location)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get projections: %w", err)
	}

	return rows, nil
}

// ListPlannableItems lists items that have at least one planning record.
func (r *planningRepository) ListPlannableItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	query := `
		SELECT DISTINCT i.id, i.code, i.description, i.unit_of_measure, i.created_at, i.updated_at
		FROM items i
		JOIN item_planning ip ON ip.item_id = i.id
		WHERE ($1 = '' OR i.code ILIKE '%' || $1 || '%' OR i.description ILIKE '%' || $1 || '%')
		ORDER BY i.code ASC
		LIMIT $2 OFFSET $3
	`

	var items []*domain.Item
	err := r.db.guard(ctx, func(ctx context.Context) error {
		return sqlx.SelectContext(ctx, r.db, &items, query, filter.Search, limit, offset)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list plannable items: %w", err)
	}

	return items, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
