package planning

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReorderingPolicy selects which generation algorithm applies to an item.
// Exactly one policy is active per planning record; parameters belonging to
// other policies are carried but ignored.
type ReorderingPolicy string

const (
	PolicyManual          ReorderingPolicy = "MANUAL"
	PolicyDemandBased     ReorderingPolicy = "DEMAND_BASED"
	PolicyFixedQuantity   ReorderingPolicy = "FIXED_QUANTITY"
	PolicyMaximumQuantity ReorderingPolicy = "MAXIMUM_QUANTITY"
)

// ParsePolicy maps a stored policy code to a ReorderingPolicy. Unknown codes
// return ok=false; the calculator treats them as a no-op rather than an error.
func ParsePolicy(code string) (ReorderingPolicy, bool) {
	switch ReorderingPolicy(code) {
	case PolicyManual, PolicyDemandBased, PolicyFixedQuantity, PolicyMaximumQuantity:
		return ReorderingPolicy(code), true
	default:
		return "", false
	}
}

// Period is a single planning bucket. Callers supply periods ascending by
// start date, positionally aligned with the projection series of the item
// being planned (periods[i] pairs with Projections[i]).
type Period struct {
	ID        int64     `json:"id"`
	StartDate time.Time `json:"start_date"`
}

// SupplierTerm is one supplier's purchasing terms for an item: the factor
// converting inventory units to purchase units and the unit price in
// purchase units.
type SupplierTerm struct {
	SupplierID       int64           `json:"supplier_id"`
	PurchaseUOMCode  string          `json:"purchase_uom_code"`
	ConversionFactor float64         `json:"conversion_factor"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
}

// ItemPlanning holds the inventory-planning parameters for one item at one
// location, plus the net projected inventory per planning period (on hand +
// on order - demand, before any order generated by the current run).
type ItemPlanning struct {
	ItemID   int64  `json:"item_id"`
	Location string `json:"location"`

	Policy ReorderingPolicy `json:"reordering_policy"`

	// Fixed / maximum quantity policies.
	ReorderPoint    float64 `json:"reorder_point"`
	ReorderQuantity float64 `json:"reorder_quantity"`

	// Demand based policy.
	DemandAccumulationPeriod int     `json:"demand_accumulation_period"`
	DemandSafetyStock        float64 `json:"demand_safety_stock"`

	// Maximum quantity policy.
	MaximumInventory float64 `json:"maximum_inventory"`

	LeadTimeDays int `json:"lead_time_days"`

	// Universal clamps; zero means unconstrained.
	LotSize              float64 `json:"lot_size"`
	MinimumOrderQuantity float64 `json:"minimum_order_quantity"`
	MaximumOrderQuantity float64 `json:"maximum_order_quantity"`
	OrderMultiple        float64 `json:"order_multiple"`

	// Projections[i] is the net projected inventory for periods[i].
	Projections []float64 `json:"projections"`

	PreferredSupplierID int64          `json:"preferred_supplier_id"`
	Suppliers           []SupplierTerm `json:"suppliers"`
}

// PlannedOrder is one proposed replenishment order. Quantity is in inventory
// units; the purchasing adapter converts it to purchase units. ASAP marks an
// order whose required start date has already passed.
type PlannedOrder struct {
	StartDate time.Time `json:"start_date"`
	DueDate   time.Time `json:"due_date"`
	Quantity  float64   `json:"quantity"`
	PeriodID  int64     `json:"period_id"`
	ASAP      bool      `json:"is_asap"`
}

// CatalogItem carries the display fields the purchasing adapter attaches to
// proposals. Keyed by the internal item id.
type CatalogItem struct {
	ID            int64  `json:"id"`
	Code          string `json:"code"`
	Description   string `json:"description"`
	UnitOfMeasure string `json:"unit_of_measure"`
}

// ProductionOrderProposal is a planned order typed as a production-order
// proposal. Quantities stay in inventory units.
type ProductionOrderProposal struct {
	PlannedOrder
}

// PurchaseOrderProposal is a planned order translated into purchase units
// with the resolved supplier and item display fields attached.
type PurchaseOrderProposal struct {
	PlannedOrder
	SupplierID        int64           `json:"supplier_id"`
	ItemCode          string          `json:"item_code,omitempty"`
	Description       string          `json:"description,omitempty"`
	UnitOfMeasureCode string          `json:"unit_of_measure_code,omitempty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
}
