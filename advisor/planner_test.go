package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanner_ProducesFeasiblePlan(t *testing.T) {
	planner := NewPlanner(DefaultCropDatabase())
	constraints := validConstraints()

	plan := planner.Plan(validSoil(), constraints, []string{ObjectiveMaximizeProfit})

	require.NotEmpty(t, plan.Allocations)

	totalArea, totalCost := 0.0, 0.0
	for _, allocation := range plan.Allocations {
		assert.GreaterOrEqual(t, allocation.AreaHa, minPlotHa)
		assert.LessOrEqual(t, allocation.AreaHa, maxCropShare*constraints.TotalArea+0.01)
		totalArea += allocation.AreaHa
		totalCost += allocation.Cost
	}
	assert.LessOrEqual(t, totalArea, constraints.TotalArea+0.01)
	assert.LessOrEqual(t, totalCost, constraints.Budget+0.01)
	assert.Equal(t, len(plan.Allocations), len(plan.Summary.Crops))
}

func TestPlanner_SummaryTotalsMatchAllocations(t *testing.T) {
	planner := NewPlanner(DefaultCropDatabase())

	plan := planner.Plan(validSoil(), validConstraints(), nil)

	yield, cost, profit := 0.0, 0.0, 0.0
	for _, allocation := range plan.Allocations {
		yield += allocation.YieldKg
		cost += allocation.Cost
		profit += allocation.Profit
	}
	assert.InDelta(t, yield, plan.Summary.TotalYield, 0.01)
	assert.InDelta(t, cost, plan.Summary.TotalCost, 0.01)
	assert.InDelta(t, profit, plan.Summary.TotalProfit, 0.01)
}

func TestPlanner_SkipsCropsBeyondWaterBudget(t *testing.T) {
	planner := NewPlanner(DefaultCropDatabase())
	constraints := validConstraints()
	constraints.WaterAvailability = 600

	plan := planner.Plan(validSoil(), constraints, nil)

	assert.NotContains(t, plan.Summary.Crops, "rice")
	assert.NotContains(t, plan.Summary.Crops, "banana")
}

func TestPlanner_BudgetLimitsArea(t *testing.T) {
	planner := NewPlanner(DefaultCropDatabase())
	constraints := validConstraints()
	constraints.Budget = 1000

	plan := planner.Plan(validSoil(), constraints, nil)

	assert.LessOrEqual(t, plan.Summary.TotalCost, constraints.Budget+0.01)
}

func TestPlanner_InfeasibleConstraintsGiveEmptyPlan(t *testing.T) {
	db := &CropDatabase{Crops: []Crop{
		{
			Name: "orchard", YieldPerHa: 1000, CostPerHa: 50000, PricePerKg: 1,
			WaterMm: 600, LaborDaysPerHa: 50,
			PHMin: 5, PHMax: 7,
			Textures: []string{"loam"}, Drainage: []string{"good"},
		},
	}}
	planner := NewPlanner(db)

	// budget covers far less than the minimum plot for the only crop
	plan := planner.Plan(validSoil(), validConstraints(), nil)

	assert.Empty(t, plan.Allocations)
	assert.Zero(t, plan.Summary.TotalYield)
	assert.Zero(t, plan.Summary.TotalCost)
	assert.Zero(t, plan.Summary.TotalProfit)
}
