package advisor

import "time"

// Recommendation sources.
const (
	SourceGitHubModels = "github_models"
	SourceBuiltin      = "builtin"
)

type ExecutiveSummary struct {
	SoilQualityScore           float64  `json:"soil_quality_score"`
	RecommendedCrops           []string `json:"recommended_crops"`
	OverallRecommendationValid bool     `json:"overall_recommendation_valid"`
	UncertaintyLevel           string   `json:"uncertainty_level"`
}

type SoilAnalysis struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

type Recommendations struct {
	Crops      []string                    `json:"crops"`
	Confidence float64                     `json:"confidence"`
	Source     string                      `json:"source"`
	Validation map[string]ValidationResult `json:"validation"`
}

type DetailedAnalysis struct {
	SoilAnalysis    SoilAnalysis    `json:"soil_analysis"`
	Recommendations Recommendations `json:"recommendations"`
	CroppingPlan    CroppingPlan    `json:"cropping_plan"`
}

type RiskAssessment struct {
	HighRiskFactors      []string `json:"high_risk_factors"`
	MediumRiskFactors    []string `json:"medium_risk_factors"`
	LowRiskFactors       []string `json:"low_risk_factors"`
	MitigationStrategies []string `json:"mitigation_strategies"`
}

// Report is the full advisory output for one analysis request.
type Report struct {
	ExecutiveSummary          ExecutiveSummary `json:"executive_summary"`
	DetailedAnalysis          DetailedAnalysis `json:"detailed_analysis"`
	ActionableRecommendations []string         `json:"actionable_recommendations"`
	RiskAssessment            RiskAssessment   `json:"risk_assessment"`
	GeneratedAt               time.Time        `json:"generated_at"`
}
