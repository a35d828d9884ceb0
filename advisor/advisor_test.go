package advisor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromJSON_Defaults(t *testing.T) {
	a, err := NewFromJSON(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceBuiltin, a.Source())
}

func TestNewFromJSON_ModelStoreArtifacts(t *testing.T) {
	database := CropDatabase{Crops: []Crop{
		{
			Name: "maize", YieldPerHa: 3000, CostPerHa: 800, PricePerKg: 0.4,
			WaterMm: 600, LaborDaysPerHa: 80,
			PHMin: 5.5, PHMax: 7,
			Textures: []string{"loam"}, Drainage: []string{"good"},
		},
	}}
	raw, err := json.Marshal(database)
	require.NoError(t, err)

	a, err := NewFromJSON(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceGitHubModels, a.Source())
}

func TestNewFromJSON_RejectsBadArtifacts(t *testing.T) {
	_, err := NewFromJSON([]byte(`{not json`), nil)
	assert.ErrorContains(t, err, "crop database")

	_, err = NewFromJSON([]byte(`{"crops":[]}`), nil)
	assert.ErrorContains(t, err, "no crops")
}

func TestAdvisor_Analyze_GoodSoil(t *testing.T) {
	a, err := NewFromJSON(nil, nil)
	require.NoError(t, err)

	report, err := a.Analyze(validSoil(), validConstraints(), nil)
	require.NoError(t, err)

	summary := report.ExecutiveSummary
	assert.Greater(t, summary.SoilQualityScore, 0.7)
	assert.LessOrEqual(t, summary.SoilQualityScore, 1.0)
	require.NotEmpty(t, summary.RecommendedCrops)
	assert.LessOrEqual(t, len(summary.RecommendedCrops), 3)
	assert.True(t, summary.OverallRecommendationValid)
	assert.Equal(t, UncertaintyLow, summary.UncertaintyLevel)

	recommendations := report.DetailedAnalysis.Recommendations
	assert.Equal(t, SourceBuiltin, recommendations.Source)
	assert.Equal(t, summary.RecommendedCrops, recommendations.Crops)
	for _, crop := range recommendations.Crops {
		result, ok := recommendations.Validation[crop]
		require.True(t, ok)
		assert.True(t, result.IsValid)
	}

	assert.NotEmpty(t, report.DetailedAnalysis.CroppingPlan.Allocations)
	assert.NotEmpty(t, report.ActionableRecommendations)
	assert.Contains(t, report.ActionableRecommendations[len(report.ActionableRecommendations)-1], "Plant ")
	assert.Contains(t, report.RiskAssessment.MediumRiskFactors, "Weather variability")
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestAdvisor_Analyze_PoorSoil(t *testing.T) {
	a, err := NewFromJSON(nil, nil)
	require.NoError(t, err)

	soil := SoilProfile{
		PH:            4.4,
		OrganicMatter: 1.0,
		Nitrogen:      15,
		Phosphorus:    5,
		Potassium:     30,
		Texture:       "sand",
		Drainage:      "poor",
		Location:      "Uganda",
	}

	report, err := a.Analyze(soil, validConstraints(), nil)
	require.NoError(t, err)

	analysis := report.DetailedAnalysis.SoilAnalysis
	assert.Contains(t, analysis.Weaknesses, "Low organic matter")
	assert.Contains(t, analysis.Weaknesses, "Low nitrogen")
	assert.Contains(t, analysis.Weaknesses, "Poor drainage")
	assert.Empty(t, analysis.Strengths)

	assert.NotEmpty(t, report.RiskAssessment.HighRiskFactors)
	assert.NotEmpty(t, report.RiskAssessment.MitigationStrategies)
	assert.Contains(t, report.ActionableRecommendations, "Apply agricultural lime to raise soil pH")

	assert.Less(t, report.ExecutiveSummary.SoilQualityScore, 0.5)
}

func TestAdvisor_Analyze_InfeasibleBudgetStillReports(t *testing.T) {
	database := CropDatabase{Crops: []Crop{
		{
			Name: "orchard", YieldPerHa: 1000, CostPerHa: 50000, PricePerKg: 1,
			WaterMm: 600, LaborDaysPerHa: 50,
			PHMin: 5, PHMax: 7,
			Textures: []string{"loam"}, Drainage: []string{"good"},
		},
	}}
	raw, err := json.Marshal(database)
	require.NoError(t, err)

	a, err := NewFromJSON(raw, nil)
	require.NoError(t, err)

	// the budget covers a fraction of the minimum plot for the only crop
	report, err := a.Analyze(validSoil(), validConstraints(), nil)
	require.NoError(t, err)

	assert.Empty(t, report.DetailedAnalysis.CroppingPlan.Allocations)
	assert.Zero(t, report.DetailedAnalysis.CroppingPlan.Summary.TotalProfit)
	assert.Contains(t, report.ActionableRecommendations,
		"Revisit the budget or farm area: no crop allocation was feasible")
}

func TestAdvisor_Analyze_InvalidInput(t *testing.T) {
	a, err := NewFromJSON(nil, nil)
	require.NoError(t, err)

	soil := validSoil()
	soil.PH = 2.0
	_, err = a.Analyze(soil, validConstraints(), nil)
	assert.ErrorContains(t, err, "soil profile")

	constraints := validConstraints()
	constraints.TotalArea = 50
	_, err = a.Analyze(validSoil(), constraints, nil)
	assert.ErrorContains(t, err, "constraints")

	_, err = a.Analyze(validSoil(), validConstraints(), []string{"summon_rain"})
	assert.ErrorContains(t, err, "summon_rain")
}
