package advisor

import "math"

// Uncertainty bands reported alongside recommendations.
const (
	UncertaintyLow    = "low"
	UncertaintyMedium = "medium"
	UncertaintyHigh   = "high"
)

// CalibrationResult summarises how much to trust a set of suitability scores.
type CalibrationResult struct {
	ConfidenceLevel float64 `json:"confidence_level"`
	UncertaintyBand string  `json:"uncertainty_band"`
}

// Calibrator turns the dispersion of suitability scores into a confidence
// level. Tight clusters of strong scores read as low uncertainty; sparse or
// scattered scores read as high.
type Calibrator struct{}

func NewCalibrator() *Calibrator {
	return &Calibrator{}
}

func (c *Calibrator) Calibrate(scores []float64) CalibrationResult {
	if len(scores) == 0 {
		return CalibrationResult{ConfidenceLevel: 0.5, UncertaintyBand: UncertaintyHigh}
	}

	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	stddev := math.Sqrt(variance / float64(len(scores)))

	confidence := math.Max(0.05, math.Min(0.99, mean-0.5*stddev))

	band := UncertaintyHigh
	switch {
	case stddev < 0.08 && mean >= 0.6:
		band = UncertaintyLow
	case stddev < 0.18 && mean >= 0.45:
		band = UncertaintyMedium
	}
	return CalibrationResult{ConfidenceLevel: confidence, UncertaintyBand: band}
}
