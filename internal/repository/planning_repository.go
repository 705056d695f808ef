package repository

import (
	"context"
	"time"

	"github.com/replanhq/replan/internal/domain"
)

// PlanningRepository supplies inventory-planning parameters and the net
// projected inventory series keyed by item and location.
type PlanningRepository interface {
	GetPlanningRecord(ctx context.Context, itemID int64, location string) (*domain.PlanningRow, error)
	GetProjections(ctx context.Context, itemID int64, location string) ([]domain.ProjectionRow, error)
	ListPlannableItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error)
}

// CalendarRepository supplies the ordered planning period sequence.
type CalendarRepository interface {
	GetPeriods(ctx context.Context, from time.Time, count int) ([]domain.Period, error)
}

// CatalogRepository supplies item display data and the supplier list. Item
// listings go through PlanningRepository.ListPlannableItems instead, so the
// catalog only ever answers point lookups and the supplier roster.
type CatalogRepository interface {
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	ListSuppliers(ctx context.Context) ([]*domain.Supplier, error)
}
