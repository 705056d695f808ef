package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type contextKey string

const dbKey contextKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "planctl",
		Usage: "Seed planning data and run proposal calculations from the command line",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "Seed items, suppliers, the planning calendar and planning records",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing planning seed data",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runSeeder,
			},
			{
				Name:  "plan",
				Usage: "Generate proposals for a single item and print them",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.Int64Flag{
						Name:     "item",
						Usage:    "Item id to plan",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "location",
						Usage: "Location code of the planning record",
						Value: "MAIN",
					},
					&cli.Int64Flag{
						Name:  "supplier",
						Usage: "Supplier id for purchase proposals (0 uses the item's supplier terms)",
					},
					&cli.StringFlag{
						Name:  "as-of",
						Usage: "Reference date in YYYY-MM-DD (defaults to today)",
					},
					&cli.IntFlag{
						Name:  "horizon",
						Usage: "Number of planning periods to load",
						Value: 26,
					},
					&cli.BoolFlag{
						Name:  "production",
						Usage: "Emit production proposals instead of purchase proposals",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runPlan,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSeeder(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	dataDir := c.String("data-dir")

	ctx := c.Context

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Starting database seeding...")

	if err := seedTable(ctx, tx, "items",
		[]string{"code", "description", "unit_of_measure"}, "code",
		filepath.Join(dataDir, "items.csv")); err != nil {
		return fmt.Errorf("failed to seed items: %w", err)
	}

	if err := seedTable(ctx, tx, "suppliers",
		[]string{"name"}, "name",
		filepath.Join(dataDir, "suppliers.csv")); err != nil {
		return fmt.Errorf("failed to seed suppliers: %w", err)
	}

	if err := seedTable(ctx, tx, "planning_periods",
		[]string{"start_date"}, "start_date",
		filepath.Join(dataDir, "planning_periods.csv")); err != nil {
		return fmt.Errorf("failed to seed planning periods: %w", err)
	}

	if err := seedPlanningRecords(ctx, tx, dataDir); err != nil {
		return fmt.Errorf("failed to seed planning records: %w", err)
	}

	if err := seedProjections(ctx, tx, dataDir); err != nil {
		return fmt.Errorf("failed to seed projections: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// seedTable upserts one CSV file into a table, matching columns by header
// name. conflictColumn is the unique key the upsert resolves on.
func seedTable(ctx context.Context, tx *sql.Tx, tableName string, columns []string, conflictColumn, filePath string) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		tableName,
		buildColumnList(columns),
		strings.Join(placeholders, ", "),
		conflictColumn,
		buildUpdateClause(columns, conflictColumn),
	)

	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			idx := getColumnIndex(header, col)
			if idx >= len(record) {
				return fmt.Errorf("column index %d out of bounds for column '%s' (record has %d columns)", idx, col, len(record))
			}
			args[i] = record[idx]
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	log.Printf("Successfully seeded %s\n", tableName)
	return nil
}

// seedPlanningRecords upserts item_planning rows. Item codes in the CSV are
// resolved to ids against the items table, so the items seed must run first.
// The suppliers column carries the supplier terms JSON verbatim.
func seedPlanningRecords(ctx context.Context, tx *sql.Tx, dataDir string) error {
	log.Printf("Seeding item_planning\n")

	file, err := os.Open(filepath.Join(dataDir, "item_planning.csv"))
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	const query = `
		INSERT INTO item_planning (
			item_id, location, reordering_policy,
			reorder_point, reorder_quantity,
			demand_accumulation_period, demand_safety_stock,
			maximum_inventory, lead_time_days,
			lot_size, minimum_order_quantity, maximum_order_quantity, order_multiple,
			preferred_supplier_id, suppliers
		)
		SELECT
			i.id, $2, $3,
			NULLIF($4, '')::numeric, NULLIF($5, '')::numeric,
			NULLIF($6, '')::int, NULLIF($7, '')::numeric,
			NULLIF($8, '')::numeric, NULLIF($9, '')::int,
			NULLIF($10, '')::numeric, NULLIF($11, '')::numeric, NULLIF($12, '')::numeric, NULLIF($13, '')::numeric,
			NULLIF($14, '')::bigint, COALESCE(NULLIF($15, ''), '[]')::jsonb
		FROM items i
		WHERE i.code = $1
		ON CONFLICT (item_id, location) DO UPDATE SET
			reordering_policy = EXCLUDED.reordering_policy,
			reorder_point = EXCLUDED.reorder_point,
			reorder_quantity = EXCLUDED.reorder_quantity,
			demand_accumulation_period = EXCLUDED.demand_accumulation_period,
			demand_safety_stock = EXCLUDED.demand_safety_stock,
			maximum_inventory = EXCLUDED.maximum_inventory,
			lead_time_days = EXCLUDED.lead_time_days,
			lot_size = EXCLUDED.lot_size,
			minimum_order_quantity = EXCLUDED.minimum_order_quantity,
			maximum_order_quantity = EXCLUDED.maximum_order_quantity,
			order_multiple = EXCLUDED.order_multiple,
			preferred_supplier_id = EXCLUDED.preferred_supplier_id,
			suppliers = EXCLUDED.suppliers,
			updated_at = CURRENT_TIMESTAMP
	`

	columns := []string{
		"item_code", "location", "reordering_policy",
		"reorder_point", "reorder_quantity",
		"demand_accumulation_period", "demand_safety_stock",
		"maximum_inventory", "lead_time_days",
		"lot_size", "minimum_order_quantity", "maximum_order_quantity", "order_multiple",
		"preferred_supplier_id", "suppliers",
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare planning statement: %w", err)
	}
	defer stmt.Close()

	rowCount := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			idx := getColumnIndex(header, col)
			if idx >= len(record) {
				return fmt.Errorf("column index %d out of bounds for column '%s' (record has %d columns)", idx, col, len(record))
			}
			args[i] = strings.TrimSpace(record[idx])
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to upsert planning record for item %v: %w", args[0], err)
		}
		rowCount++
	}

	log.Printf("Successfully seeded item_planning (%d records)\n", rowCount)
	return nil
}

// seedProjections upserts inventory_projections rows, resolving item codes
// and period start dates to ids.
func seedProjections(ctx context.Context, tx *sql.Tx, dataDir string) error {
	log.Printf("Seeding inventory_projections\n")

	file, err := os.Open(filepath.Join(dataDir, "inventory_projections.csv"))
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	const query = `
		INSERT INTO inventory_projections (item_id, location, period_id, quantity)
		SELECT i.id, $2, pp.id, NULLIF($4, '')::numeric
		FROM items i, planning_periods pp
		WHERE i.code = $1 AND pp.start_date = $3::date
		ON CONFLICT (item_id, location, period_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			updated_at = CURRENT_TIMESTAMP
	`

	columns := []string{"item_code", "location", "period_start", "quantity"}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare projection statement: %w", err)
	}
	defer stmt.Close()

	rowCount := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			idx := getColumnIndex(header, col)
			if idx >= len(record) {
				return fmt.Errorf("column index %d out of bounds for column '%s' (record has %d columns)", idx, col, len(record))
			}
			args[i] = strings.TrimSpace(record[idx])
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to upsert projection for item %v: %w", args[0], err)
		}
		rowCount++
	}

	log.Printf("Successfully seeded inventory_projections (%d records)\n", rowCount)
	return nil
}

func buildColumnList(columns []string) string {
	return `"` + strings.Join(columns, `", "`) + `"`
}

func buildUpdateClause(columns []string, conflictColumn string) string {
	updates := make([]string, 0, len(columns))
	for _, col := range columns {
		if col == conflictColumn {
			continue
		}
		updates = append(updates, fmt.Sprintf(`"%s" = EXCLUDED."%s"`, col, col))
	}
	if len(updates) == 0 {
		// Single-column tables have nothing to update on conflict, but the
		// upsert still needs a valid SET clause.
		return fmt.Sprintf(`"%s" = EXCLUDED."%s"`, conflictColumn, conflictColumn)
	}
	return strings.Join(updates, ", ")
}

func getColumnIndex(header []string, column string) int {
	for i, h := range header {
		if h == column {
			return i
		}
	}

	panic(fmt.Sprintf("column '%s' not found in header: %v", column, header))
}
