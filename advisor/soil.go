package advisor

import (
	"fmt"
	"slices"
)

// Valid soil texture and drainage classes, as collected by the dashboard.
var (
	Textures  = []string{"sand", "sandy_loam", "loam", "clay_loam", "clay"}
	Drainages = []string{"poor", "moderate", "good", "excellent"}
)

// SoilProfile is the measured soil state for a farm.
type SoilProfile struct {
	PH            float64 `json:"pH"`
	OrganicMatter float64 `json:"organic_matter"`
	Nitrogen      float64 `json:"nitrogen"`
	Phosphorus    float64 `json:"phosphorus"`
	Potassium     float64 `json:"potassium"`
	Texture       string  `json:"texture"`
	Drainage      string  `json:"drainage"`
	Location      string  `json:"location"`
}

func (s SoilProfile) Validate() error {
	if s.PH < 4.0 || s.PH > 9.0 {
		return fmt.Errorf("pH must be between 4.0 and 9.0, got %g", s.PH)
	}
	if s.OrganicMatter < 0 || s.OrganicMatter > 10 {
		return fmt.Errorf("organic matter must be between 0%% and 10%%, got %g", s.OrganicMatter)
	}
	if s.Nitrogen < 0 || s.Nitrogen > 200 {
		return fmt.Errorf("nitrogen must be between 0 and 200 kg/ha, got %g", s.Nitrogen)
	}
	if s.Phosphorus < 0 || s.Phosphorus > 100 {
		return fmt.Errorf("phosphorus must be between 0 and 100 kg/ha, got %g", s.Phosphorus)
	}
	if s.Potassium < 0 || s.Potassium > 300 {
		return fmt.Errorf("potassium must be between 0 and 300 kg/ha, got %g", s.Potassium)
	}
	if !slices.Contains(Textures, s.Texture) {
		return fmt.Errorf("unknown soil texture %q", s.Texture)
	}
	if !slices.Contains(Drainages, s.Drainage) {
		return fmt.Errorf("unknown drainage class %q", s.Drainage)
	}
	return nil
}

// ResourceConstraints are the farm resources available for a season.
type ResourceConstraints struct {
	TotalArea            float64 `json:"total_area"`
	Budget               float64 `json:"budget"`
	LaborAvailability    float64 `json:"labor_availability"`
	WaterAvailability    float64 `json:"water_availability"`
	FertilizerNitrogen   float64 `json:"fertilizer_nitrogen"`
	FertilizerPhosphorus float64 `json:"fertilizer_phosphorus"`
	FertilizerPotassium  float64 `json:"fertilizer_potassium"`
}

func (c ResourceConstraints) Validate() error {
	if c.TotalArea < 0.1 || c.TotalArea > 10 {
		return fmt.Errorf("total area must be between 0.1 and 10 hectares, got %g", c.TotalArea)
	}
	if c.Budget < 1000 || c.Budget > 20000 {
		return fmt.Errorf("budget must be between 1000 and 20000 USD, got %g", c.Budget)
	}
	if c.LaborAvailability < 50 || c.LaborAvailability > 500 {
		return fmt.Errorf("labor availability must be between 50 and 500 person-days, got %g", c.LaborAvailability)
	}
	if c.WaterAvailability < 500 || c.WaterAvailability > 2000 {
		return fmt.Errorf("water availability must be between 500 and 2000 mm, got %g", c.WaterAvailability)
	}
	if c.FertilizerNitrogen < 0 || c.FertilizerPhosphorus < 0 || c.FertilizerPotassium < 0 {
		return fmt.Errorf("fertilizer quantities must not be negative")
	}
	return nil
}

// Optimization objectives.
const (
	ObjectiveMaximizeYield  = "maximize_yield"
	ObjectiveMinimizeCost   = "minimize_cost"
	ObjectiveMaximizeProfit = "maximize_profit"
)

var allObjectives = []string{ObjectiveMaximizeYield, ObjectiveMinimizeCost, ObjectiveMaximizeProfit}

// NormalizeObjectives validates the requested objectives. An empty request
// selects all objectives.
func NormalizeObjectives(objectives []string) ([]string, error) {
	if len(objectives) == 0 {
		return slices.Clone(allObjectives), nil
	}
	for _, objective := range objectives {
		if !slices.Contains(allObjectives, objective) {
			return nil, fmt.Errorf("unknown objective %q", objective)
		}
	}
	return objectives, nil
}
