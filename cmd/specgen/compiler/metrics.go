package compiler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the engine. Each instance owns
// its registry so runs and tests never share state.
type Metrics struct {
	Registry *prometheus.Registry

	PhaseDuration *prometheus.HistogramVec
	PhaseFailures *prometheus.CounterVec
	InputFiles    prometheus.Counter
	UserTypes     prometheus.Counter
	OutputFiles   *prometheus.CounterVec
	Runs          *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		PhaseDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "specgen",
				Name:      "phase_duration_seconds",
				Help:      "Duration of each pipeline phase in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"phase"},
		),
		PhaseFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "specgen",
				Name:      "phase_failures_total",
				Help:      "Total number of runs aborted in each phase",
			},
			[]string{"phase"},
		),
		InputFiles: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "specgen",
				Name:      "input_files_total",
				Help:      "Total number of spec files loaded, includes counted",
			},
		),
		UserTypes: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "specgen",
				Name:      "user_types_total",
				Help:      "Total number of definitions and enums registered",
			},
		),
		OutputFiles: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "specgen",
				Name:      "output_files_total",
				Help:      "Total number of output files emitted",
			},
			[]string{"backend", "kind"},
		),
		Runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "specgen",
				Name:      "runs_total",
				Help:      "Total number of engine runs by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// WriteTextfile writes the current values in the node exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
