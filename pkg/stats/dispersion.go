package stats

import "math"

// AnomalySigmas is how many standard deviations above the mean a value has to be to count as an anomaly
const AnomalySigmas = 2.0

// Mean returns the arithmetic mean, or 0 for no values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStdDev returns the population standard deviation of values.
// Fewer than two values have no spread and return 0.
func PopulationStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)

	var varianceSum float64
	for _, v := range values {
		diff := v - mean
		varianceSum += diff * diff
	}
	return math.Sqrt(varianceSum / float64(len(values)))
}

// CoefficientOfVariation returns stddev / mean, or 0 when the mean is 0
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return PopulationStdDev(values) / mean
}

// FairnessScore returns a percentage (0-100) representing how evenly
// values are distributed. 100% is perfectly fair (Standard Deviation = 0).
func FairnessScore(values []float64) float64 {
	if Mean(values) == 0 {
		return 100.0 // Everyone having nothing is perfectly fair
	}

	score := 100.0 - CoefficientOfVariation(values)*100.0
	if score < 0 {
		return 0.0
	}
	return score
}

// IsAnomaly reports whether value lies more than two standard deviations above the mean
func IsAnomaly(value, mean, stddev float64) bool {
	return stddev > 0 && value > mean+AnomalySigmas*stddev
}

// Float64s converts a count vector for use with the functions above
func Float64s(counts []int) []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c)
	}
	return out
}
