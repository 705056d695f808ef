package planning

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ProductionOrders returns the item's planned orders typed as production
// order proposals. Quantities stay in inventory units and no supplier
// resolution happens.
func ProductionOrders(plan ItemPlanning, periods []Period, today time.Time) []ProductionOrderProposal {
	orders := CalculateOrders(plan, periods, today)
	proposals := make([]ProductionOrderProposal, 0, len(orders))
	for _, order := range orders {
		proposals = append(proposals, ProductionOrderProposal{PlannedOrder: order})
	}
	return proposals
}

// PurchaseOrders translates the item's planned orders into purchase order
// proposals: quantities are converted to purchase units through the matched
// supplier's conversion factor (always rounding up so the deficit is never
// under-ordered), the supplier is resolved, and item display fields are
// attached from the catalog lookup.
//
// Missing or malformed optional data degrades instead of failing: no supplier
// match means factor 1 and the preferred supplier, an absent catalog item
// leaves the display fields empty.
func PurchaseOrders(plan ItemPlanning, periods []Period, today time.Time, items map[int64]CatalogItem, supplierID int64) []PurchaseOrderProposal {
	term, matched := matchSupplierTerm(plan.Suppliers, supplierID)

	factor := 1.0
	resolvedSupplier := plan.PreferredSupplierID
	uomCode := ""
	if matched {
		factor = term.ConversionFactor
		resolvedSupplier = term.SupplierID
		uomCode = term.PurchaseUOMCode
	}

	item, hasItem := items[plan.ItemID]

	orders := CalculateOrders(plan, periods, today)
	proposals := make([]PurchaseOrderProposal, 0, len(orders))
	for _, order := range orders {
		qty := order.Quantity
		if factor > 0 {
			qty = math.Ceil(order.Quantity / factor)
		}

		proposal := PurchaseOrderProposal{
			PlannedOrder: order,
			SupplierID:   resolvedSupplier,
		}
		proposal.Quantity = qty

		if hasItem {
			proposal.ItemCode = item.Code
			proposal.Description = item.Description
			proposal.UnitOfMeasureCode = item.UnitOfMeasure
		}
		if uomCode != "" {
			proposal.UnitOfMeasureCode = uomCode
		}
		if matched && term.UnitPrice.IsPositive() {
			proposal.UnitPrice = term.UnitPrice
			proposal.EstimatedCost = term.UnitPrice.Mul(decimal.NewFromFloat(qty))
		}

		proposals = append(proposals, proposal)
	}

	return proposals
}

// matchSupplierTerm scans the record's supplier terms for the requested
// supplier. A zero supplierID or an empty terms list never matches.
func matchSupplierTerm(terms []SupplierTerm, supplierID int64) (SupplierTerm, bool) {
	if supplierID == 0 {
		return SupplierTerm{}, false
	}
	for _, term := range terms {
		if term.SupplierID == supplierID {
			return term, true
		}
	}
	return SupplierTerm{}, false
}
