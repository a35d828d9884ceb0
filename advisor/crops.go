package advisor

import (
	"fmt"
	"math"
	"slices"
)

// Crop holds the agronomic and economic parameters for one crop, as published
// in the crop database artifact.
type Crop struct {
	Name            string   `json:"name"`
	YieldPerHa      float64  `json:"yield_per_ha_kg"`
	CostPerHa       float64  `json:"cost_per_ha_usd"`
	PricePerKg      float64  `json:"price_per_kg_usd"`
	WaterMm         float64  `json:"water_requirement_mm"`
	LaborDaysPerHa  float64  `json:"labor_days_per_ha"`
	NitrogenPerHa   float64  `json:"nitrogen_kg_per_ha"`
	PhosphorusPerHa float64  `json:"phosphorus_kg_per_ha"`
	PotassiumPerHa  float64  `json:"potassium_kg_per_ha"`
	PHMin           float64  `json:"ph_min"`
	PHMax           float64  `json:"ph_max"`
	Textures        []string `json:"textures"`
	Drainage        []string `json:"drainage"`
}

// ProfitPerHa is expected revenue minus cost for one hectare.
func (c *Crop) ProfitPerHa() float64 {
	return c.YieldPerHa*c.PricePerKg - c.CostPerHa
}

type CropDatabase struct {
	Crops []Crop `json:"crops"`
}

func (db *CropDatabase) Validate() error {
	if len(db.Crops) == 0 {
		return fmt.Errorf("crop database contains no crops")
	}
	for _, crop := range db.Crops {
		if crop.Name == "" {
			return fmt.Errorf("crop database contains a crop with no name")
		}
		if crop.PHMin >= crop.PHMax {
			return fmt.Errorf("crop %q has an empty pH window", crop.Name)
		}
	}
	return nil
}

func (db *CropDatabase) Find(name string) *Crop {
	for i := range db.Crops {
		if db.Crops[i].Name == name {
			return &db.Crops[i]
		}
	}
	return nil
}

// Suitability scores how well a crop fits the soil, in [0,1]. The blend
// favours pH fit and nutrient adequacy over physical soil class.
func Suitability(soil SoilProfile, crop Crop) float64 {
	phScore := 1.0
	if soil.PH < crop.PHMin {
		phScore = 1 - 0.4*(crop.PHMin-soil.PH)
	} else if soil.PH > crop.PHMax {
		phScore = 1 - 0.4*(soil.PH-crop.PHMax)
	}
	phScore = clamp01(phScore)

	textureScore := 0.4
	if slices.Contains(crop.Textures, soil.Texture) {
		textureScore = 1.0
	}
	drainageScore := 0.5
	if slices.Contains(crop.Drainage, soil.Drainage) {
		drainageScore = 1.0
	}

	nutrientScore := (nutrientAdequacy(soil.Nitrogen, crop.NitrogenPerHa) +
		nutrientAdequacy(soil.Phosphorus, crop.PhosphorusPerHa) +
		nutrientAdequacy(soil.Potassium, crop.PotassiumPerHa)) / 3

	organicScore := math.Min(1, soil.OrganicMatter/3)

	return 0.3*phScore + 0.3*nutrientScore + 0.15*textureScore + 0.15*drainageScore + 0.1*organicScore
}

func nutrientAdequacy(available float64, required float64) float64 {
	if required <= 0 {
		return 1
	}
	return math.Min(1, available/required)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
