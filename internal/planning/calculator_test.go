package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func weeklyPeriods(start time.Time, count int) []Period {
	periods := make([]Period, 0, count)
	for i := 0; i < count; i++ {
		periods = append(periods, Period{
			ID:        int64(i + 1),
			StartDate: start.AddDate(0, 0, 7*i),
		})
	}
	return periods
}

func TestCalculateOrders_ManualNeverOrders(t *testing.T) {
	plan := ItemPlanning{
		ItemID:       1,
		Policy:       PolicyManual,
		ReorderPoint: 100,
		Projections:  []float64{-500, -500, -500},
	}
	periods := weeklyPeriods(testToday, 3)

	orders := CalculateOrders(plan, periods, testToday)
	assert.Empty(t, orders)
}

func TestCalculateOrders_UnknownPolicyIsNoOp(t *testing.T) {
	plan := ItemPlanning{
		ItemID:      1,
		Policy:      ReorderingPolicy("LOT_FOR_LOT"),
		Projections: []float64{-500},
	}
	orders := CalculateOrders(plan, weeklyPeriods(testToday, 1), testToday)
	assert.Empty(t, orders)
}

func TestCalculateOrders_EmptyPeriods(t *testing.T) {
	plan := ItemPlanning{Policy: PolicyFixedQuantity, ReorderPoint: 100, ReorderQuantity: 50}
	orders := CalculateOrders(plan, nil, testToday)
	assert.Empty(t, orders)
}

func TestFixedQuantity_RepeatsUntilReorderPointCovered(t *testing.T) {
	// Position -20 against a reorder point of 100: two orders of 50 leave the
	// position at 80, still short, so a third fires and covers it.
	plan := ItemPlanning{
		Policy:          PolicyFixedQuantity,
		ReorderPoint:    100,
		ReorderQuantity: 50,
		Projections:     []float64{-20},
	}
	periods := weeklyPeriods(testToday, 1)

	orders := CalculateOrders(plan, periods, testToday)
	require.Len(t, orders, 3)
	for i, order := range orders {
		assert.Equal(t, 50.0, order.Quantity)
		assert.Equal(t, periods[0].StartDate.AddDate(0, 0, i), order.DueDate, "orders stack on successive day offsets")
		assert.Equal(t, periods[0].ID, order.PeriodID)
	}
}

func TestFixedQuantity_DayCapTruncatesDeepDeficit(t *testing.T) {
	// A deficit of 500 would need ten orders of 50; the per-period cap stops
	// the loop after five (day offsets 0 through 4) and leaves the residual
	// for the next period's pass.
	plan := ItemPlanning{
		Policy:          PolicyFixedQuantity,
		ReorderPoint:    100,
		ReorderQuantity: 50,
		Projections:     []float64{-400, -400},
	}
	periods := weeklyPeriods(testToday, 2)

	orders := CalculateOrders(plan, periods, testToday)
	require.Len(t, orders, 10)

	for i := 0; i < 5; i++ {
		assert.Equal(t, periods[0].StartDate.AddDate(0, 0, i), orders[i].DueDate)
	}
	// The running total from period one (250) carries into period two's
	// trigger: 100 - (-400 + 250) is still positive, so ordering resumes.
	for i := 5; i < 10; i++ {
		assert.Equal(t, periods[1].StartDate.AddDate(0, 0, i-5), orders[i].DueDate)
	}
}

func TestFixedQuantity_BypassesClamps(t *testing.T) {
	plan := ItemPlanning{
		Policy:               PolicyFixedQuantity,
		ReorderPoint:         100,
		ReorderQuantity:      50,
		LotSize:              7,
		MinimumOrderQuantity: 80,
		MaximumOrderQuantity: 10,
		OrderMultiple:        13,
		Projections:          []float64{60},
	}
	orders := CalculateOrders(plan, weeklyPeriods(testToday, 1), testToday)
	require.Len(t, orders, 1)
	assert.Equal(t, 50.0, orders[0].Quantity, "fixed quantity ignores lot, min, max and multiple")
}

func TestFixedQuantity_LeadTimeAndASAP(t *testing.T) {
	plan := ItemPlanning{
		Policy:          PolicyFixedQuantity,
		ReorderPoint:    10,
		ReorderQuantity: 20,
		LeadTimeDays:    5,
		Projections:     []float64{0},
	}
	// Period starts 3 days out; start date lands 2 days in the past.
	periods := []Period{{ID: 1, StartDate: testToday.AddDate(0, 0, 3)}}

	orders := CalculateOrders(plan, periods, testToday)
	require.Len(t, orders, 1)
	assert.Equal(t, testToday.AddDate(0, 0, -2), orders[0].StartDate)
	assert.True(t, orders[0].ASAP)
}

func TestDemandBased_SingleWindowShortfall(t *testing.T) {
	tests := []struct {
		name          string
		orderMultiple float64
		wantQty       float64
	}{
		{name: "raw_shortfall", orderMultiple: 0, wantQty: 15},
		{name: "rounded_to_multiple", orderMultiple: 10, wantQty: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := ItemPlanning{
				Policy:                   PolicyDemandBased,
				DemandAccumulationPeriod: 1,
				DemandSafetyStock:        20,
				OrderMultiple:            tt.orderMultiple,
				Projections:              []float64{5},
			}
			periods := weeklyPeriods(testToday, 1)

			orders := CalculateOrders(plan, periods, testToday)
			require.Len(t, orders, 1)
			assert.Equal(t, tt.wantQty, orders[0].Quantity)
			assert.Equal(t, periods[0].StartDate, orders[0].DueDate)
		})
	}
}

func TestDemandBased_LastProjectionInWindowWins(t *testing.T) {
	// Window of three periods: earlier projections are far below safety stock
	// but the window is judged only by its final period's value.
	plan := ItemPlanning{
		Policy:                   PolicyDemandBased,
		DemandAccumulationPeriod: 3,
		DemandSafetyStock:        20,
		Projections:              []float64{-300, -150, 25},
	}
	orders := CalculateOrders(plan, weeklyPeriods(testToday, 3), testToday)
	assert.Empty(t, orders, "end-of-window snapshot of 25 meets the safety stock")
}

func TestDemandBased_OrderedQuantityCarriesAcrossWindows(t *testing.T) {
	// First window ends at -30: order 50 (shortfall 50 vs safety 20). Second
	// window's raw projection of -40 is lifted by the 50 already ordered to
	// +10, so its shortfall is only 10.
	plan := ItemPlanning{
		Policy:                   PolicyDemandBased,
		DemandAccumulationPeriod: 2,
		DemandSafetyStock:        20,
		Projections:              []float64{0, -30, -35, -40},
	}
	periods := weeklyPeriods(testToday, 4)

	orders := CalculateOrders(plan, periods, testToday)
	require.Len(t, orders, 2)
	assert.Equal(t, 50.0, orders[0].Quantity)
	assert.Equal(t, periods[0].StartDate, orders[0].DueDate, "due on the window's first period")
	assert.Equal(t, 10.0, orders[1].Quantity)
	assert.Equal(t, periods[2].StartDate, orders[1].DueDate)
}

func TestDemandBased_ClampOrderIsLotMaxMinMultiple(t *testing.T) {
	// Shortfall 95 -> capped at lot size 60 -> capped at max 55 -> min 30 is
	// already satisfied -> rounded up to the next multiple of 25 = 75. The
	// multiple rounds after the caps, so the final quantity may exceed them.
	plan := ItemPlanning{
		Policy:                   PolicyDemandBased,
		DemandAccumulationPeriod: 1,
		DemandSafetyStock:        100,
		LotSize:                  60,
		MaximumOrderQuantity:     55,
		MinimumOrderQuantity:     30,
		OrderMultiple:            25,
		Projections:              []float64{5},
	}
	orders := CalculateOrders(plan, weeklyPeriods(testToday, 1), testToday)
	require.Len(t, orders, 1)
	assert.Equal(t, 75.0, orders[0].Quantity)
}

func TestDemandBased_ShortFinalWindow(t *testing.T) {
	// Five periods with a window of two: the trailing window holds a single
	// period and is still planned.
	plan := ItemPlanning{
		Policy:                   PolicyDemandBased,
		DemandAccumulationPeriod: 2,
		DemandSafetyStock:        10,
		Projections:              []float64{50, 50, 50, 50, -5},
	}
	periods := weeklyPeriods(testToday, 5)

	orders := CalculateOrders(plan, periods, testToday)
	require.Len(t, orders, 1)
	assert.Equal(t, 15.0, orders[0].Quantity)
	assert.Equal(t, periods[4].StartDate, orders[0].DueDate)
}

func TestMaximumQuantity_RefillAndLotRounding(t *testing.T) {
	tests := []struct {
		name    string
		lotSize float64
		wantQty float64
	}{
		{name: "already_a_lot_multiple", lotSize: 25, wantQty: 150},
		{name: "rounded_up_to_lot", lotSize: 40, wantQty: 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := ItemPlanning{
				Policy:               PolicyMaximumQuantity,
				ReorderPoint:         60,
				MaximumInventory:     200,
				MinimumOrderQuantity: 10,
				LotSize:              tt.lotSize,
				Projections:          []float64{50},
			}
			orders := CalculateOrders(plan, weeklyPeriods(testToday, 1), testToday)
			require.Len(t, orders, 1)
			assert.Equal(t, tt.wantQty, orders[0].Quantity)
		})
	}
}

func TestMaximumQuantity_MinimumOrderFloor(t *testing.T) {
	// Refill need is 5 but the minimum order is 40.
	plan := ItemPlanning{
		Policy:               PolicyMaximumQuantity,
		ReorderPoint:         100,
		MaximumInventory:     100,
		MinimumOrderQuantity: 40,
		Projections:          []float64{95},
	}
	orders := CalculateOrders(plan, weeklyPeriods(testToday, 1), testToday)
	require.Len(t, orders, 1)
	assert.Equal(t, 40.0, orders[0].Quantity)
}

func TestMaximumQuantity_MaxOrderCapAppliesLast(t *testing.T) {
	// Required 180 -> multiple of 50 rounds to 200 -> lot 60 rounds to 240 ->
	// capped at 90.
	plan := ItemPlanning{
		Policy:               PolicyMaximumQuantity,
		ReorderPoint:         50,
		MaximumInventory:     200,
		OrderMultiple:        50,
		LotSize:              60,
		MaximumOrderQuantity: 90,
		Projections:          []float64{20},
	}
	orders := CalculateOrders(plan, weeklyPeriods(testToday, 1), testToday)
	require.Len(t, orders, 1)
	assert.Equal(t, 90.0, orders[0].Quantity)
}

func TestMaximumQuantity_MaxOrderCapRepeatsWithinPeriod(t *testing.T) {
	// The refill of 120 is capped at 30 per order, so the loop re-evaluates
	// the position after each order: 0 -> 30 -> 60 -> 90, stopping once the
	// reorder point of 100 is covered. Four orders on successive day offsets.
	plan := ItemPlanning{
		Policy:               PolicyMaximumQuantity,
		ReorderPoint:         100,
		MaximumInventory:     120,
		MaximumOrderQuantity: 30,
		Projections:          []float64{0},
	}
	periods := weeklyPeriods(testToday, 1)

	orders := CalculateOrders(plan, periods, testToday)
	require.Len(t, orders, 4)
	for i, order := range orders {
		assert.Equal(t, 30.0, order.Quantity)
		assert.Equal(t, periods[0].StartDate.AddDate(0, 0, i), order.DueDate)
		assert.Equal(t, periods[0].ID, order.PeriodID)
	}
}

func TestMaximumQuantity_DayCapWithMaximumBelowReorderPoint(t *testing.T) {
	// Maximum inventory sits below the reorder point, so the first order of
	// 50 lifts the position to the maximum but never to the trigger. The
	// follow-up orders size to zero (50 - 50, no min floor) and the per-period
	// cap is what ends the loop, with the deficit still open.
	plan := ItemPlanning{
		Policy:           PolicyMaximumQuantity,
		ReorderPoint:     100,
		MaximumInventory: 50,
		Projections:      []float64{0},
	}
	periods := weeklyPeriods(testToday, 1)

	orders := CalculateOrders(plan, periods, testToday)
	require.Len(t, orders, 5, "the day cap ends the loop, not the reorder point")
	assert.Equal(t, 50.0, orders[0].Quantity)
	for i := 1; i < 5; i++ {
		assert.Equal(t, 0.0, orders[i].Quantity)
		assert.Equal(t, periods[0].StartDate.AddDate(0, 0, i), orders[i].DueDate)
	}
}

func TestMaximumQuantity_ASAPRequiresStockout(t *testing.T) {
	pastPeriod := []Period{{ID: 1, StartDate: testToday.AddDate(0, 0, -10)}}

	tests := []struct {
		name       string
		projection float64
		wantASAP   bool
	}{
		{name: "below_reorder_but_positive", projection: 30, wantASAP: false},
		{name: "actual_stockout", projection: -5, wantASAP: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := ItemPlanning{
				Policy:           PolicyMaximumQuantity,
				ReorderPoint:     60,
				MaximumInventory: 100,
				Projections:      []float64{tt.projection},
			}
			orders := CalculateOrders(plan, pastPeriod, testToday)
			require.NotEmpty(t, orders)
			assert.Equal(t, tt.wantASAP, orders[0].ASAP)
		})
	}
}

func TestCalculateOrders_ASAPUsesCalendarDayComparison(t *testing.T) {
	// Start date on the same calendar day as today is not late, whatever the
	// clock says.
	plan := ItemPlanning{
		Policy:          PolicyFixedQuantity,
		ReorderPoint:    10,
		ReorderQuantity: 20,
		Projections:     []float64{0},
	}
	periods := []Period{{ID: 1, StartDate: testToday}}
	now := testToday.Add(23 * time.Hour)

	orders := CalculateOrders(plan, periods, now)
	require.Len(t, orders, 1)
	assert.False(t, orders[0].ASAP)
}

func TestCalculateOrders_Idempotent(t *testing.T) {
	plan := ItemPlanning{
		Policy:                   PolicyDemandBased,
		DemandAccumulationPeriod: 2,
		DemandSafetyStock:        40,
		LeadTimeDays:             3,
		OrderMultiple:            5,
		Projections:              []float64{10, -20, -60, -90},
	}
	periods := weeklyPeriods(testToday, 4)

	first := CalculateOrders(plan, periods, testToday)
	second := CalculateOrders(plan, periods, testToday)
	assert.Equal(t, first, second)
}

func TestParsePolicy(t *testing.T) {
	for _, code := range []string{"MANUAL", "DEMAND_BASED", "FIXED_QUANTITY", "MAXIMUM_QUANTITY"} {
		policy, ok := ParsePolicy(code)
		assert.True(t, ok)
		assert.Equal(t, ReorderingPolicy(code), policy)
	}

	_, ok := ParsePolicy("EOQ")
	assert.False(t, ok)
}
