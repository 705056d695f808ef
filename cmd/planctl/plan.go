package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/replanhq/replan/internal/planning"
	"github.com/urfave/cli/v2"
)

// runPlan loads one item's planning inputs, runs the calculator and prints
// the proposals as JSON on stdout.
func runPlan(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	asOf := time.Now()
	if raw := c.String("as-of"); raw != "" {
		asOf, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid as-of date %q: %w", raw, err)
		}
	}

	horizon := c.Int("horizon")
	if horizon <= 0 {
		horizon = 26
	}

	ctx := c.Context
	itemID := c.Int64("item")
	location := c.String("location")

	plan, err := loadPlan(ctx, db, itemID, location)
	if err != nil {
		return err
	}

	periods, err := loadPeriods(ctx, db, asOf, horizon)
	if err != nil {
		return err
	}
	if len(periods) == 0 {
		return fmt.Errorf("no planning periods on or after %s", asOf.Format("2006-01-02"))
	}

	plan.Projections, err = loadProjections(ctx, db, itemID, location, periods)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if c.Bool("production") {
		return enc.Encode(planning.ProductionOrders(*plan, periods, asOf))
	}

	items, err := loadCatalogItem(ctx, db, itemID)
	if err != nil {
		return err
	}

	return enc.Encode(planning.PurchaseOrders(*plan, periods, asOf, items, c.Int64("supplier")))
}

func loadPlan(ctx context.Context, db *sql.DB, itemID int64, location string) (*planning.ItemPlanning, error) {
	const query = `
		SELECT
			reordering_policy,
			COALESCE(reorder_point, 0),
			COALESCE(reorder_quantity, 0),
			COALESCE(demand_accumulation_period, 0),
			COALESCE(demand_safety_stock, 0),
			COALESCE(maximum_inventory, 0),
			COALESCE(lead_time_days, 0),
			COALESCE(lot_size, 0),
			COALESCE(minimum_order_quantity, 0),
			COALESCE(maximum_order_quantity, 0),
			COALESCE(order_multiple, 0),
			COALESCE(preferred_supplier_id, 0),
			COALESCE(suppliers, '[]'::jsonb)
		FROM item_planning
		WHERE item_id = $1 AND location = $2
	`

	plan := planning.ItemPlanning{ItemID: itemID, Location: location}
	var (
		policy        string
		suppliersJSON []byte
	)
	err := db.QueryRowContext(ctx, query, itemID, location).Scan(
		&policy,
		&plan.ReorderPoint,
		&plan.ReorderQuantity,
		&plan.DemandAccumulationPeriod,
		&plan.DemandSafetyStock,
		&plan.MaximumInventory,
		&plan.LeadTimeDays,
		&plan.LotSize,
		&plan.MinimumOrderQuantity,
		&plan.MaximumOrderQuantity,
		&plan.OrderMultiple,
		&plan.PreferredSupplierID,
		&suppliersJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no planning record for item %d at %s", itemID, location)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load planning record: %w", err)
	}

	plan.Policy = planning.ReorderingPolicy(policy)
	if err := json.Unmarshal(suppliersJSON, &plan.Suppliers); err != nil {
		return nil, fmt.Errorf("failed to decode supplier terms: %w", err)
	}

	return &plan, nil
}

func loadPeriods(ctx context.Context, db *sql.DB, from time.Time, count int) ([]planning.Period, error) {
	const query = `
		SELECT id, start_date
		FROM planning_periods
		WHERE start_date >= $1
		ORDER BY start_date ASC
		LIMIT $2
	`

	rows, err := db.QueryContext(ctx, query, from, count)
	if err != nil {
		return nil, fmt.Errorf("failed to load planning periods: %w", err)
	}
	defer rows.Close()

	var periods []planning.Period
	for rows.Next() {
		var p planning.Period
		if err := rows.Scan(&p.ID, &p.StartDate); err != nil {
			return nil, fmt.Errorf("failed to scan planning period: %w", err)
		}
		periods = append(periods, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate planning periods: %w", err)
	}

	return periods, nil
}

// loadProjections returns the projection series aligned positionally with
// periods. Periods without a stored projection default to zero.
func loadProjections(ctx context.Context, db *sql.DB, itemID int64, location string, periods []planning.Period) ([]float64, error) {
	const query = `
		SELECT period_id, COALESCE(quantity, 0)
		FROM inventory_projections
		WHERE item_id = $1 AND location = $2
	`

	rows, err := db.QueryContext(ctx, query, itemID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to load projections: %w", err)
	}
	defer rows.Close()

	byPeriod := make(map[int64]float64)
	for rows.Next() {
		var (
			periodID int64
			qty      float64
		)
		if err := rows.Scan(&periodID, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan projection: %w", err)
		}
		byPeriod[periodID] = qty
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projections: %w", err)
	}

	projections := make([]float64, len(periods))
	for i, p := range periods {
		projections[i] = byPeriod[p.ID]
	}

	return projections, nil
}

func loadCatalogItem(ctx context.Context, db *sql.DB, itemID int64) (map[int64]planning.CatalogItem, error) {
	const query = `
		SELECT id, code, COALESCE(description, ''), COALESCE(unit_of_measure, '')
		FROM items
		WHERE id = $1
	`

	var item planning.CatalogItem
	err := db.QueryRowContext(ctx, query, itemID).Scan(&item.ID, &item.Code, &item.Description, &item.UnitOfMeasure)
	if err == sql.ErrNoRows {
		// The adapter tolerates a missing catalog entry and leaves the
		// display fields blank.
		return map[int64]planning.CatalogItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d: %w", itemID, err)
	}

	return map[int64]planning.CatalogItem{item.ID: item}, nil
}
