package planning

import (
	"math"
	"time"
)

// maxOrdersPerPeriod bounds how many same-period orders the fixed and
// maximum quantity policies may emit before moving on. A deficit that five
// orders cannot cover is left to the next period's pass.
const maxOrdersPerPeriod = 5

// CalculateOrders generates planned replenishment orders for one item from
// its planning parameters and projected inventory timeline. The function is
// pure: it reads nothing but its arguments and today is an explicit input so
// runs are reproducible. Periods must be ascending by start date and aligned
// with the record's projection series.
func CalculateOrders(plan ItemPlanning, periods []Period, today time.Time) []PlannedOrder {
	switch plan.Policy {
	case PolicyDemandBased:
		return demandBasedOrders(plan, periods, today)
	case PolicyFixedQuantity:
		return fixedQuantityOrders(plan, periods, today)
	case PolicyMaximumQuantity:
		return maximumQuantityOrders(plan, periods, today)
	default:
		// Manual reorder and unrecognized policies never auto-generate.
		return []PlannedOrder{}
	}
}

// demandBasedOrders walks the periods in windows of DemandAccumulationPeriod
// and places one order per window whose end-of-window stock falls below the
// safety stock. The scan inside a window keeps only the last period's
// projection: the window is judged by its end-of-window snapshot, not by a
// sum or minimum over the window.
func demandBasedOrders(plan ItemPlanning, periods []Period, today time.Time) []PlannedOrder {
	orders := []PlannedOrder{}

	window := plan.DemandAccumulationPeriod
	if window < 1 {
		window = 1
	}

	ordered := 0.0
	for start := 0; start < len(periods); start += window {
		end := start + window
		if end > len(periods) {
			end = len(periods)
		}

		projectedStock := 0.0
		for i := start; i < end; i++ {
			projectedStock = projectionAt(plan, i) + ordered
		}

		if projectedStock >= plan.DemandSafetyStock {
			continue
		}

		qty := plan.DemandSafetyStock - projectedStock
		if plan.LotSize > 0 && qty > plan.LotSize {
			qty = plan.LotSize
		}
		if plan.MaximumOrderQuantity > 0 && qty > plan.MaximumOrderQuantity {
			qty = plan.MaximumOrderQuantity
		}
		if qty < plan.MinimumOrderQuantity {
			qty = plan.MinimumOrderQuantity
		}
		if plan.OrderMultiple > 0 {
			qty = roundUpToMultiple(qty, plan.OrderMultiple)
		}

		dueDate := periods[start].StartDate
		startDate := dueDate.AddDate(0, 0, -plan.LeadTimeDays)
		orders = append(orders, PlannedOrder{
			StartDate: startDate,
			DueDate:   dueDate,
			Quantity:  qty,
			PeriodID:  periods[start].ID,
			ASAP:      beforeDay(startDate, today),
		})
		ordered += qty
	}

	return orders
}

// fixedQuantityOrders emits orders of exactly ReorderQuantity, one per day
// offset within a period, until the position reaches the reorder point or
// the per-period order cap is hit. Lot size, min/max and multiple clamps are
// intentionally not applied under this policy.
func fixedQuantityOrders(plan ItemPlanning, periods []Period, today time.Time) []PlannedOrder {
	orders := []PlannedOrder{}

	ordered := 0.0
	for i, period := range periods {
		needed := plan.ReorderPoint - (projectionAt(plan, i) + ordered)
		for day := 0; needed > 0 && day < maxOrdersPerPeriod; day++ {
			dueDate := period.StartDate.AddDate(0, 0, day)
			startDate := dueDate.AddDate(0, 0, -plan.LeadTimeDays)
			orders = append(orders, PlannedOrder{
				StartDate: startDate,
				DueDate:   dueDate,
				Quantity:  plan.ReorderQuantity,
				PeriodID:  period.ID,
				ASAP:      beforeDay(startDate, today),
			})
			ordered += plan.ReorderQuantity
			needed = plan.ReorderPoint - (projectionAt(plan, i) + ordered)
		}
	}

	return orders
}

// maximumQuantityOrders uses the same per-period, day-capped loop as the
// fixed quantity policy but sizes each order to refill up to the maximum
// inventory. ASAP here additionally requires an actual stockout: a position
// that is merely below the reorder point does not flag the order.
func maximumQuantityOrders(plan ItemPlanning, periods []Period, today time.Time) []PlannedOrder {
	orders := []PlannedOrder{}

	ordered := 0.0
	for i, period := range periods {
		needed := plan.ReorderPoint - (projectionAt(plan, i) + ordered)
		for day := 0; needed > 0 && day < maxOrdersPerPeriod; day++ {
			position := projectionAt(plan, i) + ordered

			qty := plan.MaximumInventory - position
			if qty < plan.MinimumOrderQuantity {
				qty = plan.MinimumOrderQuantity
			}
			if plan.OrderMultiple > 1 {
				qty = roundUpToMultiple(qty, plan.OrderMultiple)
			}
			if plan.LotSize > 0 {
				qty = roundUpToMultiple(qty, plan.LotSize)
			}
			if plan.MaximumOrderQuantity > 0 && qty > plan.MaximumOrderQuantity {
				qty = plan.MaximumOrderQuantity
			}

			dueDate := period.StartDate.AddDate(0, 0, day)
			startDate := dueDate.AddDate(0, 0, -plan.LeadTimeDays)
			orders = append(orders, PlannedOrder{
				StartDate: startDate,
				DueDate:   dueDate,
				Quantity:  qty,
				PeriodID:  period.ID,
				ASAP:      beforeDay(startDate, today) && position < 0,
			})
			ordered += qty
			needed = plan.ReorderPoint - (projectionAt(plan, i) + ordered)
		}
	}

	return orders
}

// projectionAt returns the projected quantity for period index i, treating a
// missing entry as zero so a short series never panics the run.
func projectionAt(plan ItemPlanning, i int) float64 {
	if i < 0 || i >= len(plan.Projections) {
		return 0
	}
	return plan.Projections[i]
}

// roundUpToMultiple rounds qty up to the nearest multiple of m.
func roundUpToMultiple(qty, m float64) float64 {
	if m <= 0 {
		return qty
	}
	return math.Ceil(qty/m) * m
}

// beforeDay reports whether t falls on an earlier calendar day than ref,
// ignoring time of day.
func beforeDay(t, ref time.Time) bool {
	ty, tm, td := t.Date()
	ry, rm, rd := ref.Date()
	if ty != ry {
		return ty < ry
	}
	if tm != rm {
		return tm < rm
	}
	return td < rd
}
