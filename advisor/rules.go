package advisor

import (
	"fmt"
	"math"
)

// RuleConfig tunes the agronomic rule engine. It is published as
// rule_engine_config.json alongside the crop database.
type RuleConfig struct {
	// Confidence lost per violation.
	ViolationPenalty float64 `json:"violation_penalty"`
	// Floor for the confidence score.
	MinConfidence float64 `json:"min_confidence"`
	// pH slack beyond the crop's window before a violation is raised.
	PHTolerance float64 `json:"ph_tolerance"`
	// Fraction of a crop's nutrient requirement that must be coverable by
	// soil plus available fertilizer.
	NutrientAdequacy float64 `json:"nutrient_adequacy"`
}

// ValidationResult is the outcome of checking one crop recommendation
// against the agronomic rules.
type ValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	Violations      []string `json:"violations"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// RuleEngine applies hard agronomic constraints to crop recommendations.
type RuleEngine struct {
	config RuleConfig
	db     *CropDatabase
}

func NewRuleEngine(config RuleConfig, db *CropDatabase) *RuleEngine {
	return &RuleEngine{config: config, db: db}
}

// ValidateRecommendation checks a single crop against the soil profile and
// resource constraints. Unknown crops produce a single violation.
func (e *RuleEngine) ValidateRecommendation(soil SoilProfile, constraints ResourceConstraints, cropName string) ValidationResult {
	crop := e.db.Find(cropName)
	if crop == nil {
		return ValidationResult{
			Violations:      []string{fmt.Sprintf("crop %q is not in the crop database", cropName)},
			ConfidenceScore: e.config.MinConfidence,
		}
	}

	var violations []string
	if soil.PH < crop.PHMin-e.config.PHTolerance || soil.PH > crop.PHMax+e.config.PHTolerance {
		violations = append(violations, fmt.Sprintf(
			"soil pH %.1f is outside the tolerable range %.1f-%.1f for %s",
			soil.PH, crop.PHMin-e.config.PHTolerance, crop.PHMax+e.config.PHTolerance, crop.Name))
	}
	if !contains(crop.Drainage, soil.Drainage) {
		violations = append(violations, fmt.Sprintf("%s drainage is unsuitable for %s", soil.Drainage, crop.Name))
	}
	if !contains(crop.Textures, soil.Texture) {
		violations = append(violations, fmt.Sprintf("%s soil texture is unsuitable for %s", soil.Texture, crop.Name))
	}
	violations = append(violations, e.nutrientViolations(soil, constraints, crop)...)

	confidence := math.Max(e.config.MinConfidence, 1-e.config.ViolationPenalty*float64(len(violations)))
	return ValidationResult{
		IsValid:         len(violations) == 0,
		Violations:      violations,
		ConfidenceScore: confidence,
	}
}

// nutrientViolations checks that soil reserves plus fertilizer stock can
// cover the crop's requirement over one hectare.
func (e *RuleEngine) nutrientViolations(soil SoilProfile, constraints ResourceConstraints, crop *Crop) []string {
	type nutrient struct {
		name       string
		soil       float64
		fertilizer float64
		required   float64
	}
	nutrients := []nutrient{
		{"nitrogen", soil.Nitrogen, constraints.FertilizerNitrogen, crop.NitrogenPerHa},
		{"phosphorus", soil.Phosphorus, constraints.FertilizerPhosphorus, crop.PhosphorusPerHa},
		{"potassium", soil.Potassium, constraints.FertilizerPotassium, crop.PotassiumPerHa},
	}

	var violations []string
	for _, n := range nutrients {
		if n.required <= 0 {
			continue
		}
		coverable := n.soil + n.fertilizer
		if coverable < e.config.NutrientAdequacy*n.required {
			violations = append(violations, fmt.Sprintf(
				"available %s (%.0f kg/ha incl. fertilizer) cannot cover %s's requirement of %.0f kg/ha",
				n.name, coverable, crop.Name, n.required))
		}
	}
	return violations
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
