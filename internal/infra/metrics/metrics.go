// Package metrics exposes benchmark activity as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/whhaicheng/DB-Showdown/internal/domain/benchmark"
)

const prefix = "showdown_"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

// Recorder records timings, run outcomes and cache clears on its own registry.
// It implements usecase.MetricsRecorder.
type Recorder struct {
	registry *prometheus.Registry

	queryDuration *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	cacheClears   *prometheus.CounterVec
}

// NewRecorder creates a recorder with a fresh registry that also carries the
// Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		queryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "query_duration_milliseconds",
				Help:    "Wall-clock time in milliseconds of one scenario query, rows drained",
				Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
			},
			[]string{"scenario", "backend"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "scenario_runs_total",
				Help: "Number of paired scenario runs by outcome",
			},
			[]string{"scenario", "outcome"},
		),
		cacheClears: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "cache_clears_total",
				Help: "Number of cache-clear actions by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveTiming records one backend measurement.
func (r *Recorder) ObserveTiming(scenario benchmark.Scenario, result benchmark.TimingResult) {
	r.queryDuration.
		With(prometheus.Labels{"scenario": scenario.String(), "backend": result.Backend.String()}).
		Observe(result.ElapsedMillis)
}

// ObserveRun records the outcome of a paired run.
func (r *Recorder) ObserveRun(scenario benchmark.Scenario, err error) {
	r.runs.
		With(prometheus.Labels{"scenario": scenario.String(), "outcome": outcome(err)}).
		Inc()
}

// ObserveCacheClear records the outcome of a cache-clear action.
func (r *Recorder) ObserveCacheClear(err error) {
	r.cacheClears.With(prometheus.Labels{"outcome": outcome(err)}).Inc()
}

// Registry returns the registry the recorder writes to.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, benchmark.ErrTimeout):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}
