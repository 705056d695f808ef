package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/replanhq/replan/internal/domain"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// GetItem fetches a single catalog item. A missing item returns (nil, nil);
// the purchasing adapter treats an absent item as "no display fields", not
// as a failure.
func (r *catalogRepository) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	query := `
		SELECT id, code, description, unit_of_measure, created_at, updated_at
		FROM items
		WHERE id = $1
	`

	var item domain.Item
	err := r.db.guard(ctx, func(ctx context.Context) error {
		return sqlx.GetContext(ctx, r.db, &item, query, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}

	return &item, nil
}

func (r *catalogRepository) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM suppliers
		ORDER BY name
	`

	var suppliers []*domain.Supplier
	err := r.db.guard(ctx, func(ctx context.Context) error {
		return sqlx.SelectContext(ctx, r.db, &suppliers, query)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	return suppliers, nil
}
