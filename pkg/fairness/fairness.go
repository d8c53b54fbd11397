package fairness

import (
	"github.com/arnavshah/dutyboard-api-go/pkg/models"
	"github.com/arnavshah/dutyboard-api-go/pkg/stats"
)

// Score computes per-category fairness over the employees of group. An empty
// group selects everyone. Employees with zero shifts take part in the spread.
func Score(totals []models.EmployeeShiftTotals, group string) models.FairnessMetrics {
	var weekend, night, holiday, total []int
	for _, t := range totals {
		if group != "" && t.Group != group {
			continue
		}
		weekend = append(weekend, t.WeekendShifts)
		night = append(night, t.NightShifts)
		holiday = append(holiday, t.HolidayShifts)
		total = append(total, t.TotalShifts)
	}

	m := models.FairnessMetrics{
		Weekend:   category(weekend),
		Night:     category(night),
		Holiday:   category(holiday),
		Total:     category(total),
		Employees: len(total),
	}
	m.Overall = m.Total.Score
	return m
}

func category(counts []int) models.CategoryScore {
	values := stats.Float64s(counts)
	return models.CategoryScore{
		Score: stats.FairnessScore(values),
		Mean:  stats.Mean(values),
	}
}

// Rating puts a fairness score into a coarse band for display
func Rating(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 75:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}
