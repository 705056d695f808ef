package domain

import (
	"time"
)

// Item represents a catalog item eligible for replenishment planning
type Item struct {
	ID            int64     `json:"id" db:"id"`
	Code          string    `json:"code" db:"code"`
	Description   string    `json:"description" db:"description"`
	UnitOfMeasure string    `json:"unit_of_measure" db:"unit_of_measure"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Supplier represents a vendor that can fulfil purchase proposals
type Supplier struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Period represents one planning calendar bucket
type Period struct {
	ID        int64     `json:"id" db:"id"`
	StartDate time.Time `json:"start_date" db:"start_date"`
}

// PlanningRow is the raw planning parameter record for an item at a location.
// SuppliersJSON holds the supplier terms as stored (JSONB); the service
// parses it tolerantly, so malformed terms degrade to an empty list.
type PlanningRow struct {
	ItemID                   int64   `json:"item_id" db:"item_id"`
	Location                 string  `json:"location" db:"location"`
	ReorderingPolicy         string  `json:"reordering_policy" db:"reordering_policy"`
	ReorderPoint             float64 `json:"reorder_point" db:"reorder_point"`
	ReorderQuantity          float64 `json:"reorder_quantity" db:"reorder_quantity"`
	DemandAccumulationPeriod int     `json:"demand_accumulation_period" db:"demand_accumulation_period"`
	DemandSafetyStock        float64 `json:"demand_safety_stock" db:"demand_safety_stock"`
	MaximumInventory         float64 `json:"maximum_inventory" db:"maximum_inventory"`
	LeadTimeDays             int     `json:"lead_time_days" db:"lead_time_days"`
	LotSize                  float64 `json:"lot_size" db:"lot_size"`
	MinimumOrderQuantity     float64 `json:"minimum_order_quantity" db:"minimum_order_quantity"`
	MaximumOrderQuantity     float64 `json:"maximum_order_quantity" db:"maximum_order_quantity"`
	OrderMultiple            float64 `json:"order_multiple" db:"order_multiple"`
	PreferredSupplierID      int64   `json:"preferred_supplier_id" db:"preferred_supplier_id"`
	SuppliersJSON            []byte  `json:"-" db:"suppliers"`
}

// ProjectionRow is one period's net projected inventory for an item
type ProjectionRow struct {
	PeriodID int64   `json:"period_id" db:"period_id"`
	Quantity float64 `json:"quantity" db:"quantity"`
}

// ItemFilter represents search and pagination for catalog listings
type ItemFilter struct {
	Search string `json:"search"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
