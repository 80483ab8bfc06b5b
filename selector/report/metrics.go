package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sram-ecc/eccsel/selector"
)

const metricsNamespace = "eccsel"

// RunMetrics holds the gauges and counters exported for selection runs.
// Each RunMetrics owns its registry so a batch job can write a
// node-exporter textfile without touching the default registry.
type RunMetrics struct {
	registry *prometheus.Registry

	runs        prometheus.Counter
	candidates  prometheus.Gauge
	frontier    prometheus.Gauge
	fronts      prometheus.Gauge
	hypervolume prometheus.Gauge
	spacing     prometheus.Gauge
	objectives  *prometheus.GaugeVec
	selected    *prometheus.GaugeVec
	diagnostics *prometheus.CounterVec
}

// NewRunMetrics registers every metric on a fresh registry.
func NewRunMetrics() *RunMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &RunMetrics{
		registry: reg,
		runs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Selection runs observed",
		}),
		candidates: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "candidates",
			Help:      "Candidates that passed the eligibility ceilings in the last run",
		}),
		frontier: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "frontier_size",
			Help:      "Records on the epsilon-Pareto frontier in the last run",
		}),
		fronts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "nsga2",
			Name:      "fronts",
			Help:      "Non-domination fronts in the last run",
		}),
		hypervolume: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "frontier",
			Name:      "hypervolume",
			Help:      "Normalized hypervolume of the first front",
		}),
		spacing: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "frontier",
			Name:      "spacing",
			Help:      "Schott spacing of the first front",
		}),
		objectives: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "candidate",
			Name:      "objective",
			Help:      "Objective value per candidate",
		}, []string{"code", "objective"}),
		selected: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "selected_info",
			Help:      "Recommended code of the last run (value is always 1)",
		}, []string{"code", "mode", "run_id"}),
		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics raised, by kind and level",
		}, []string{"kind", "level"}),
	}
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one selection result. Per-run gauges are replaced.
func (m *RunMetrics) Observe(res *selector.Result) {
	m.runs.Inc()
	m.candidates.Set(float64(len(res.Candidates)))
	m.frontier.Set(float64(len(res.Pareto)))
	m.fronts.Set(float64(len(res.NSGA2.Fronts)))
	m.hypervolume.Set(res.Quality.Hypervolume)
	m.spacing.Set(res.Quality.Spacing)

	m.objectives.Reset()
	for i := range res.Candidates {
		r := &res.Candidates[i]
		m.objectives.WithLabelValues(r.Code, selector.KeyFIT).Set(r.FIT)
		m.objectives.WithLabelValues(r.Code, selector.KeyCarbon).Set(r.CarbonKg)
		m.objectives.WithLabelValues(r.Code, selector.KeyLatency).Set(r.LatencyNs)
	}

	m.selected.Reset()
	if res.Decision != nil {
		m.selected.WithLabelValues(res.Decision.Code, string(res.Decision.Mode), res.RunID).Set(1)
	}
	for _, d := range res.Diagnostics {
		m.diagnostics.WithLabelValues(d.Kind, string(d.Level)).Inc()
	}
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
