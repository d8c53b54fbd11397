package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector receives engine and API observations
type Collector interface {
	ObserveBoard(onDuty, absent, active int)
	ObserveFairness(group string, overall float64)
	ObserveAnomalies(metric string, flagged int)
	ObserveRequest(route string, status int, elapsed time.Duration)
}

// Nop discards every observation
type Nop struct{}

var _ Collector = Nop{}

// ObserveBoard does nothing
func (Nop) ObserveBoard(int, int, int) {}

// ObserveFairness does nothing
func (Nop) ObserveFairness(string, float64) {}

// ObserveAnomalies does nothing
func (Nop) ObserveAnomalies(string, int) {}

// ObserveRequest does nothing
func (Nop) ObserveRequest(string, int, time.Duration) {}

// Prometheus implements Collector with lazily registered Prometheus metrics
type Prometheus struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	boards        prometheus.Counter
	onDuty        prometheus.Gauge
	absent        prometheus.Gauge
	activeShifts  prometheus.Gauge
	fairness      *prometheus.GaugeVec
	anomalies     *prometheus.CounterVec
	requestTiming *prometheus.HistogramVec
}

var _ Collector = (*Prometheus)(nil)

// NewPrometheus creates a collector on reg (prometheus.DefaultRegisterer when nil)
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "dutyboard"
	}
	return &Prometheus{reg: reg, namespace: namespace}
}

func (p *Prometheus) ensureRegistered() {
	p.once.Do(func() {
		p.boards = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "duty",
			Name:      "boards_total",
			Help:      "Duty boards aggregated.",
		})
		p.onDuty = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "duty",
			Name:      "on_duty",
			Help:      "Shift assignments on the most recent board.",
		})
		p.absent = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "duty",
			Name:      "absent",
			Help:      "Absences on the most recent board.",
		})
		p.activeShifts = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "duty",
			Name:      "active_now",
			Help:      "Shift assignments running at the board's reference instant.",
		})
		p.fairness = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "fairness",
			Name:      "overall_score",
			Help:      "Most recent overall fairness score by group.",
		}, []string{"group"})
		p.anomalies = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "trends",
			Name:      "anomalous_months_total",
			Help:      "Months flagged as anomalous by metric.",
		}, []string{"metric"})
		p.requestTiming = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"route", "status"})

		p.reg.MustRegister(p.boards, p.onDuty, p.absent, p.activeShifts, p.fairness, p.anomalies, p.requestTiming)
	})
}

// ObserveBoard counts an aggregated board and records its on-duty, absent and active sizes
func (p *Prometheus) ObserveBoard(onDuty, absent, active int) {
	p.ensureRegistered()
	p.boards.Inc()
	p.onDuty.Set(float64(onDuty))
	p.absent.Set(float64(absent))
	p.activeShifts.Set(float64(active))
}

// ObserveFairness records the latest overall fairness score of a group ("all" when empty)
func (p *Prometheus) ObserveFairness(group string, overall float64) {
	p.ensureRegistered()
	if group == "" {
		group = "all"
	}
	p.fairness.WithLabelValues(group).Set(overall)
}

// ObserveAnomalies adds the months flagged for a metric
func (p *Prometheus) ObserveAnomalies(metric string, flagged int) {
	p.ensureRegistered()
	p.anomalies.WithLabelValues(metric).Add(float64(flagged))
}

// ObserveRequest records the latency of an HTTP request by route and status class
func (p *Prometheus) ObserveRequest(route string, status int, elapsed time.Duration) {
	p.ensureRegistered()
	p.requestTiming.WithLabelValues(route, statusLabel(status)).Observe(elapsed.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
