package advisor

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Advisor composes the rule engine, uncertainty calibrator and cropping
// planner into a single analysis pipeline.
type Advisor struct {
	db         *CropDatabase
	rules      *RuleEngine
	planner    *Planner
	calibrator *Calibrator
	source     string
}

func New(db *CropDatabase, ruleConfig RuleConfig, source string) *Advisor {
	return &Advisor{
		db:         db,
		rules:      NewRuleEngine(ruleConfig, db),
		planner:    NewPlanner(db),
		calibrator: NewCalibrator(),
		source:     source,
	}
}

// NewFromJSON builds an advisor from raw model artifacts. Either argument may
// be nil, in which case the embedded defaults are used; recommendations are
// attributed to the model store only when the crop database came from it.
func NewFromJSON(cropDatabase []byte, ruleConfig []byte) (*Advisor, error) {
	db := DefaultCropDatabase()
	source := SourceBuiltin
	if cropDatabase != nil {
		var decoded CropDatabase
		if err := json.Unmarshal(cropDatabase, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode crop database: %w", err)
		}
		if err := decoded.Validate(); err != nil {
			return nil, fmt.Errorf("invalid crop database: %w", err)
		}
		db = &decoded
		source = SourceGitHubModels
	}

	config := DefaultRuleConfig()
	if ruleConfig != nil {
		if err := json.Unmarshal(ruleConfig, &config); err != nil {
			return nil, fmt.Errorf("failed to decode rule config: %w", err)
		}
	}
	return New(db, config, source), nil
}

// Source reports where the crop database came from.
func (a *Advisor) Source() string {
	return a.source
}

// Analyze runs the full advisory pipeline for one farm.
func (a *Advisor) Analyze(soil SoilProfile, constraints ResourceConstraints, objectives []string) (*Report, error) {
	if err := soil.Validate(); err != nil {
		return nil, fmt.Errorf("invalid soil profile: %w", err)
	}
	if err := constraints.Validate(); err != nil {
		return nil, fmt.Errorf("invalid constraints: %w", err)
	}
	objectives, err := NormalizeObjectives(objectives)
	if err != nil {
		return nil, err
	}

	quality, strengths, weaknesses := a.assessSoil(soil)
	recommended, scores := a.recommendCrops(soil)
	calibration := a.calibrator.Calibrate(scores)

	validation := make(map[string]ValidationResult, len(recommended))
	overallValid := len(recommended) > 0
	for _, crop := range recommended {
		result := a.rules.ValidateRecommendation(soil, constraints, crop)
		validation[crop] = result
		if !result.IsValid {
			overallValid = false
		}
	}

	plan := a.planner.Plan(soil, constraints, objectives)
	risks := a.assessRisks(soil, constraints, plan, calibration)

	return &Report{
		ExecutiveSummary: ExecutiveSummary{
			SoilQualityScore:           quality,
			RecommendedCrops:           recommended,
			OverallRecommendationValid: overallValid,
			UncertaintyLevel:           calibration.UncertaintyBand,
		},
		DetailedAnalysis: DetailedAnalysis{
			SoilAnalysis: SoilAnalysis{Strengths: strengths, Weaknesses: weaknesses},
			Recommendations: Recommendations{
				Crops:      recommended,
				Confidence: round2(calibration.ConfidenceLevel),
				Source:     a.source,
				Validation: validation,
			},
			CroppingPlan: plan,
		},
		ActionableRecommendations: a.actions(weaknesses, plan),
		RiskAssessment:            risks,
		GeneratedAt:               time.Now().UTC(),
	}, nil
}

// recommendCrops returns up to three crops whose suitability clears the
// recommendation threshold, falling back to the single best fit.
func (a *Advisor) recommendCrops(soil SoilProfile) ([]string, []float64) {
	type scored struct {
		name  string
		score float64
	}
	all := make([]scored, 0, len(a.db.Crops))
	for _, crop := range a.db.Crops {
		all = append(all, scored{name: crop.Name, score: Suitability(soil, crop)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].name < all[j].name
	})

	names := []string{}
	scores := []float64{}
	for _, s := range all {
		if s.score < 0.4 || len(names) == 3 {
			break
		}
		names = append(names, s.name)
		scores = append(scores, s.score)
	}
	if len(names) == 0 && len(all) > 0 {
		names = append(names, all[0].name)
		scores = append(scores, all[0].score)
	}
	return names, scores
}

func (a *Advisor) assessSoil(soil SoilProfile) (float64, []string, []string) {
	strengths := []string{}
	weaknesses := []string{}

	phScore := 1.0
	switch {
	case soil.PH < 5.5:
		phScore = clamp01(1 - 0.3*(5.5-soil.PH))
		weaknesses = append(weaknesses, fmt.Sprintf("Acidic soil (pH %.1f)", soil.PH))
	case soil.PH > 7.5:
		phScore = clamp01(1 - 0.3*(soil.PH-7.5))
		weaknesses = append(weaknesses, fmt.Sprintf("Alkaline soil (pH %.1f)", soil.PH))
	default:
		strengths = append(strengths, "Good pH")
	}

	organicScore := math.Min(1, soil.OrganicMatter/4)
	if soil.OrganicMatter >= 3 {
		strengths = append(strengths, "Good organic matter content")
	} else if soil.OrganicMatter < 2 {
		weaknesses = append(weaknesses, "Low organic matter")
	}

	nScore := math.Min(1, soil.Nitrogen/80)
	if soil.Nitrogen < 40 {
		weaknesses = append(weaknesses, "Low nitrogen")
	} else if soil.Nitrogen >= 80 {
		strengths = append(strengths, "Adequate nitrogen")
	}
	pScore := math.Min(1, soil.Phosphorus/30)
	if soil.Phosphorus < 15 {
		weaknesses = append(weaknesses, "Low phosphorus")
	} else if soil.Phosphorus >= 30 {
		strengths = append(strengths, "Adequate phosphorus")
	}
	kScore := math.Min(1, soil.Potassium/150)
	if soil.Potassium < 60 {
		weaknesses = append(weaknesses, "Low potassium")
	} else if soil.Potassium >= 150 {
		strengths = append(strengths, "Adequate potassium")
	}

	textureScores := map[string]float64{
		"loam": 1.0, "sandy_loam": 0.8, "clay_loam": 0.8, "clay": 0.6, "sand": 0.5,
	}
	textureScore := textureScores[soil.Texture]
	if soil.Texture == "loam" {
		strengths = append(strengths, "Well-balanced loam texture")
	} else if soil.Texture == "sand" {
		weaknesses = append(weaknesses, "Sandy soil holds little water")
	}

	drainageScores := map[string]float64{
		"excellent": 1.0, "good": 0.9, "moderate": 0.7, "poor": 0.4,
	}
	drainageScore := drainageScores[soil.Drainage]
	if soil.Drainage == "poor" {
		weaknesses = append(weaknesses, "Poor drainage")
	} else if soil.Drainage == "good" || soil.Drainage == "excellent" {
		strengths = append(strengths, "Good drainage")
	}

	nutrientScore := (nScore + pScore + kScore) / 3
	quality := 0.2*phScore + 0.2*organicScore + 0.3*nutrientScore + 0.15*textureScore + 0.15*drainageScore
	return round2(quality), strengths, weaknesses
}

func (a *Advisor) assessRisks(soil SoilProfile, constraints ResourceConstraints, plan CroppingPlan, calibration CalibrationResult) RiskAssessment {
	risks := RiskAssessment{
		HighRiskFactors:      []string{},
		MediumRiskFactors:    []string{},
		LowRiskFactors:       []string{},
		MitigationStrategies: []string{},
	}

	if soil.PH < 4.8 || soil.PH > 8.5 {
		risks.HighRiskFactors = append(risks.HighRiskFactors, "Extreme soil pH restricts most crops")
		risks.MitigationStrategies = append(risks.MitigationStrategies, "Correct soil pH (lime for acidic, sulphur or organic mulch for alkaline) before planting")
	}
	if soil.Drainage == "poor" && constraints.WaterAvailability > 1500 {
		risks.HighRiskFactors = append(risks.HighRiskFactors, "Waterlogging likely: poor drainage with high water supply")
		risks.MitigationStrategies = append(risks.MitigationStrategies, "Dig drainage channels or plant on raised beds")
	}
	if len(plan.Allocations) > 0 && plan.Summary.TotalProfit < 0 {
		risks.HighRiskFactors = append(risks.HighRiskFactors, "Planned season runs at a loss")
		risks.MitigationStrategies = append(risks.MitigationStrategies, "Reduce planted area or switch to lower-cost crops")
	}

	risks.MediumRiskFactors = append(risks.MediumRiskFactors, "Weather variability")
	risks.MitigationStrategies = append(risks.MitigationStrategies, "Stagger planting dates to spread weather risk")
	if soil.OrganicMatter < 2 {
		risks.MediumRiskFactors = append(risks.MediumRiskFactors, "Low organic matter reduces resilience to dry spells")
	}
	if constraints.Budget > 0 && plan.Summary.TotalCost > 0.9*constraints.Budget {
		risks.MediumRiskFactors = append(risks.MediumRiskFactors, "Budget nearly exhausted by the plan")
		risks.MitigationStrategies = append(risks.MitigationStrategies, "Keep a cash reserve of at least 10% of the budget")
	}
	if calibration.UncertaintyBand == UncertaintyHigh {
		risks.MediumRiskFactors = append(risks.MediumRiskFactors, "High uncertainty in crop recommendations")
	}

	if constraints.WaterAvailability < 800 {
		risks.LowRiskFactors = append(risks.LowRiskFactors, "Limited water headroom for dry seasons")
	}
	laborUsed := 0.0
	for _, allocation := range plan.Allocations {
		if crop := a.db.Find(allocation.Crop); crop != nil {
			laborUsed += allocation.AreaHa * crop.LaborDaysPerHa
		}
	}
	if constraints.LaborAvailability > 0 && laborUsed > 0.8*constraints.LaborAvailability {
		risks.LowRiskFactors = append(risks.LowRiskFactors, "Tight labor schedule at planting and harvest peaks")
	}
	return risks
}

func (a *Advisor) actions(weaknesses []string, plan CroppingPlan) []string {
	actions := []string{}
	for _, weakness := range weaknesses {
		switch {
		case strings.HasPrefix(weakness, "Acidic soil"):
			actions = append(actions, "Apply agricultural lime to raise soil pH")
		case strings.HasPrefix(weakness, "Alkaline soil"):
			actions = append(actions, "Apply sulphur or organic mulch to lower soil pH")
		case weakness == "Low organic matter":
			actions = append(actions, "Apply organic matter (compost or manure) before planting")
		case weakness == "Low nitrogen":
			actions = append(actions, "Top-dress with nitrogen fertilizer early in the season")
		case weakness == "Low phosphorus":
			actions = append(actions, "Apply phosphorus fertilizer at planting")
		case weakness == "Low potassium":
			actions = append(actions, "Apply potassium fertilizer before flowering")
		case weakness == "Poor drainage":
			actions = append(actions, "Improve drainage before the wet season")
		}
	}
	if len(plan.Summary.Crops) > 0 {
		actions = append(actions, "Plant "+humanJoin(plan.Summary.Crops))
	} else {
		actions = append(actions, "Revisit the budget or farm area: no crop allocation was feasible")
	}
	return actions
}

func humanJoin(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
