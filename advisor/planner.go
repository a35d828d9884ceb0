package advisor

import (
	"math"
	"sort"
)

// Smallest plot worth planting, and the share of the farm any single crop may
// occupy (keeps plans diversified).
const (
	minPlotHa    = 0.25
	maxCropShare = 0.4
)

type Allocation struct {
	Crop    string  `json:"crop"`
	AreaHa  float64 `json:"area_ha"`
	YieldKg float64 `json:"yield_kg"`
	Cost    float64 `json:"cost_usd"`
	Revenue float64 `json:"revenue_usd"`
	Profit  float64 `json:"profit_usd"`
}

type PlanSummary struct {
	Crops       []string `json:"crops"`
	TotalYield  float64  `json:"total_yield"`
	TotalCost   float64  `json:"total_cost"`
	TotalProfit float64  `json:"total_profit"`
}

type CroppingPlan struct {
	Allocations []Allocation `json:"allocations"`
	Summary     PlanSummary  `json:"summary"`
}

// Planner allocates farm area across crops under resource constraints,
// ranking crops by an objective-weighted score.
type Planner struct {
	db *CropDatabase
}

func NewPlanner(db *CropDatabase) *Planner {
	return &Planner{db: db}
}

type scoredCrop struct {
	crop  Crop
	score float64
}

// Plan produces a cropping plan. Crops are ranked by suitability times an
// objective blend (normalized yield, inverted cost, normalized profit), then
// area is assigned greedily while budget, labor and fertilizer stocks last.
// A crop whose seasonal water requirement exceeds the available water is
// skipped outright.
func (p *Planner) Plan(soil SoilProfile, constraints ResourceConstraints, objectives []string) CroppingPlan {
	ranked := p.rank(soil, objectives)

	remainingArea := constraints.TotalArea
	remainingBudget := constraints.Budget
	remainingLabor := constraints.LaborAvailability
	fertN := constraints.FertilizerNitrogen
	fertP := constraints.FertilizerPhosphorus
	fertK := constraints.FertilizerPotassium

	plan := CroppingPlan{Summary: PlanSummary{Crops: []string{}}}
	for _, candidate := range ranked {
		if remainingArea < minPlotHa {
			break
		}
		if candidate.score < 0.35 {
			continue
		}
		crop := candidate.crop
		if crop.WaterMm > constraints.WaterAvailability {
			continue
		}

		area := math.Min(remainingArea, maxCropShare*constraints.TotalArea)
		if crop.CostPerHa > 0 {
			area = math.Min(area, remainingBudget/crop.CostPerHa)
		}
		if crop.LaborDaysPerHa > 0 {
			area = math.Min(area, remainingLabor/crop.LaborDaysPerHa)
		}
		area = math.Min(area, areaByFertilizer(soil.Nitrogen, crop.NitrogenPerHa, fertN))
		area = math.Min(area, areaByFertilizer(soil.Phosphorus, crop.PhosphorusPerHa, fertP))
		area = math.Min(area, areaByFertilizer(soil.Potassium, crop.PotassiumPerHa, fertK))
		if area < minPlotHa {
			continue
		}

		allocation := Allocation{
			Crop:    crop.Name,
			AreaHa:  round2(area),
			YieldKg: round2(area * crop.YieldPerHa),
			Cost:    round2(area * crop.CostPerHa),
			Revenue: round2(area * crop.YieldPerHa * crop.PricePerKg),
		}
		allocation.Profit = round2(allocation.Revenue - allocation.Cost)
		plan.Allocations = append(plan.Allocations, allocation)

		remainingArea -= area
		remainingBudget -= allocation.Cost
		remainingLabor -= area * crop.LaborDaysPerHa
		fertN -= fertilizerUsed(soil.Nitrogen, crop.NitrogenPerHa, area)
		fertP -= fertilizerUsed(soil.Phosphorus, crop.PhosphorusPerHa, area)
		fertK -= fertilizerUsed(soil.Potassium, crop.PotassiumPerHa, area)

		plan.Summary.Crops = append(plan.Summary.Crops, crop.Name)
		plan.Summary.TotalYield += allocation.YieldKg
		plan.Summary.TotalCost += allocation.Cost
		plan.Summary.TotalProfit += allocation.Profit
	}

	plan.Summary.TotalYield = round2(plan.Summary.TotalYield)
	plan.Summary.TotalCost = round2(plan.Summary.TotalCost)
	plan.Summary.TotalProfit = round2(plan.Summary.TotalProfit)
	return plan
}

func (p *Planner) rank(soil SoilProfile, objectives []string) []scoredCrop {
	wantYield := contains(objectives, ObjectiveMaximizeYield)
	wantCost := contains(objectives, ObjectiveMinimizeCost)
	wantProfit := contains(objectives, ObjectiveMaximizeProfit)

	maxYield, maxCost, maxProfit := 0.0, 0.0, 0.0
	for _, crop := range p.db.Crops {
		maxYield = math.Max(maxYield, crop.YieldPerHa)
		maxCost = math.Max(maxCost, crop.CostPerHa)
		maxProfit = math.Max(maxProfit, crop.ProfitPerHa())
	}

	ranked := make([]scoredCrop, 0, len(p.db.Crops))
	for _, crop := range p.db.Crops {
		blend, weight := 0.0, 0.0
		if wantYield && maxYield > 0 {
			blend += crop.YieldPerHa / maxYield
			weight++
		}
		if wantCost && maxCost > 0 {
			blend += 1 - crop.CostPerHa/maxCost
			weight++
		}
		if wantProfit && maxProfit > 0 {
			blend += math.Max(0, crop.ProfitPerHa()/maxProfit)
			weight++
		}
		if weight == 0 {
			blend, weight = 1, 1
		}
		ranked = append(ranked, scoredCrop{
			crop:  crop,
			score: Suitability(soil, crop) * (blend / weight),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].crop.Name < ranked[j].crop.Name
	})
	return ranked
}

// areaByFertilizer returns the largest area whose nutrient deficit (crop
// requirement minus what the soil supplies) the fertilizer stock can cover.
func areaByFertilizer(soilSupply float64, required float64, stock float64) float64 {
	deficit := required - soilSupply
	if deficit <= 0 {
		return math.Inf(1)
	}
	return math.Max(0, stock/deficit)
}

func fertilizerUsed(soilSupply float64, required float64, area float64) float64 {
	deficit := required - soilSupply
	if deficit <= 0 {
		return 0
	}
	return deficit * area
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
