package anomaly

import (
	"errors"
	"fmt"

	"github.com/arnavshah/dutyboard-api-go/pkg/stats"
)

// MonthsPerYear is the required length of every series
const MonthsPerYear = 12

// ErrSeriesLength is returned when a series does not have one value per month
var ErrSeriesLength = errors.New("series must have exactly 12 monthly values")

// Tracked metrics
const (
	MetricSickDays        = "sick_days"
	MetricOvertimeHours   = "overtime_hours"
	MetricStaffingDensity = "staffing_density"
)

// KnownMetrics lists the metrics the trend view tracks
var KnownMetrics = []string{MetricSickDays, MetricOvertimeHours, MetricStaffingDensity}

// Report is the anomaly evaluation of one metric series
type Report struct {
	Metric    string    `json:"metric"`
	Values    []float64 `json:"values"`
	Mean      float64   `json:"mean"`
	StdDev    float64   `json:"std_dev"`
	Threshold float64   `json:"threshold"`
	Flags     []bool    `json:"flags"`
	Months    []int     `json:"anomalous_months"` // 1-based
}

// Detect flags each month whose value exceeds the series mean by more than two standard deviations
func Detect(series []float64) ([]bool, error) {
	if len(series) != MonthsPerYear {
		return nil, fmt.Errorf("%w: got %d", ErrSeriesLength, len(series))
	}

	mean := stats.Mean(series)
	sd := stats.PopulationStdDev(series)

	flags := make([]bool, len(series))
	for i, v := range series {
		flags[i] = stats.IsAnomaly(v, mean, sd)
	}
	return flags, nil
}

// Analyze runs Detect and keeps the statistics behind the flags
func Analyze(metric string, series []float64) (Report, error) {
	flags, err := Detect(series)
	if err != nil {
		return Report{}, fmt.Errorf("metric %s: %w", metric, err)
	}

	r := Report{
		Metric: metric,
		Values: series,
		Mean:   stats.Mean(series),
		StdDev: stats.PopulationStdDev(series),
		Flags:  flags,
		Months: []int{},
	}
	r.Threshold = r.Mean + stats.AnomalySigmas*r.StdDev
	for i, f := range flags {
		if f {
			r.Months = append(r.Months, i+1)
		}
	}
	return r, nil
}
