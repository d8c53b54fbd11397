package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", nil, 0},
		{"Single", []float64{4}, 4},
		{"Mixed", []float64{1, 2, 3, 6}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Mean(tt.values), 1e-9)
		})
	}
}

func TestPopulationStdDev(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", nil, 0},
		{"Single", []float64{7}, 0},
		{"Constant", []float64{3, 3, 3}, 0},
		{"Textbook", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2},
		{"Pair", []float64{0, 8}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PopulationStdDev(tt.values), 1e-9)
		})
	}
}

func TestFairnessScore(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", nil, 100},
		{"AllZero", []float64{0, 0, 0}, 100},
		{"Constant", []float64{4, 4, 4, 4}, 100},
		{"Pair", []float64{2, 6}, 50},
		{"Skewed", []float64{0, 0, 0, 8}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, FairnessScore(tt.values), 1e-9)
		})
	}
}

func TestFairnessScore_ConstantIsPerfect(t *testing.T) {
	for _, x := range []float64{0, 0.5, 1, 13, 250} {
		assert.Equal(t, 100.0, FairnessScore([]float64{x, x, x, x, x}), "x=%v", x)
	}
}

func TestFairnessScore_DecreasesWithSpread(t *testing.T) {
	prev := 101.0
	for spread := 0.0; spread <= 10; spread++ {
		score := FairnessScore([]float64{10 - spread, 10, 10 + spread})
		assert.Less(t, score, prev)
		assert.GreaterOrEqual(t, score, 0.0)
		prev = score
	}
}

func TestIsAnomaly(t *testing.T) {
	assert.False(t, IsAnomaly(100, 5, 0), "zero stddev never flags")
	assert.False(t, IsAnomaly(9, 5, 2), "exactly mean+2σ is not above")
	assert.True(t, IsAnomaly(9.01, 5, 2))
	assert.False(t, IsAnomaly(-50, 5, 2))
}

func TestIsAnomaly_ConstantSeries(t *testing.T) {
	series := []float64{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3}
	mean, sd := Mean(series), PopulationStdDev(series)
	for _, v := range series {
		assert.False(t, IsAnomaly(v, mean, sd))
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	assert.Zero(t, CoefficientOfVariation(nil))
	assert.Zero(t, CoefficientOfVariation([]float64{0, 0}))
	assert.InDelta(t, math.Sqrt(12)/2, CoefficientOfVariation([]float64{0, 0, 0, 8}), 1e-9)
}

func TestFloat64s(t *testing.T) {
	assert.Equal(t, []float64{1, 0, 3}, Float64s([]int{1, 0, 3}))
	assert.Empty(t, Float64s(nil))
}
