package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalibrator_EmptyScores(t *testing.T) {
	result := NewCalibrator().Calibrate(nil)

	assert.Equal(t, 0.5, result.ConfidenceLevel)
	assert.Equal(t, UncertaintyHigh, result.UncertaintyBand)
}

func TestCalibrator_TightStrongScores(t *testing.T) {
	result := NewCalibrator().Calibrate([]float64{0.92, 0.9, 0.88})

	assert.Equal(t, UncertaintyLow, result.UncertaintyBand)
	assert.Greater(t, result.ConfidenceLevel, 0.8)
}

func TestCalibrator_ModerateScores(t *testing.T) {
	result := NewCalibrator().Calibrate([]float64{0.5, 0.55, 0.6})

	assert.Equal(t, UncertaintyMedium, result.UncertaintyBand)
}

func TestCalibrator_ScatteredScores(t *testing.T) {
	result := NewCalibrator().Calibrate([]float64{0.2, 0.8})

	assert.Equal(t, UncertaintyHigh, result.UncertaintyBand)
	assert.Less(t, result.ConfidenceLevel, 0.5)
}

func TestCalibrator_ConfidenceIsClamped(t *testing.T) {
	result := NewCalibrator().Calibrate([]float64{1, 1, 1})

	assert.Equal(t, 0.99, result.ConfidenceLevel)
}
