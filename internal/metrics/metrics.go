// Package metrics exposes Prometheus counters and histograms for the
// toolchain's pipeline stages (parse, check, interpret, JIT-compile),
// following the teacher's pkg/websocket counter idiom (one struct of
// named metrics, increment/observe helpers) but backed by the real
// client_golang registry instead of hand-rolled atomics, since the
// ambient stack should use the ecosystem library the teacher's go.mod
// already carries for this.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline holds every counter/histogram the CLI driver touches.
type Pipeline struct {
	ParseTotal    prometheus.Counter
	CheckTotal    prometheus.Counter
	CheckErrors   prometheus.Counter
	RunsTotal     *prometheus.CounterVec // labeled by backend: "interp" or "jit"
	RunDuration   *prometheus.HistogramVec
	RuntimePanics prometheus.Counter
}

// NewPipeline registers every metric against a fresh registry so
// repeated test construction doesn't collide with the global default
// registry's "already registered" panic.
func NewPipeline() (*Pipeline, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Pipeline{
		ParseTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tetra_parse_total",
			Help: "Number of source files parsed.",
		}),
		CheckTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tetra_typecheck_total",
			Help: "Number of programs type-checked.",
		}),
		CheckErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "tetra_typecheck_errors_total",
			Help: "Number of static type errors accumulated across all checks.",
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tetra_runs_total",
			Help: "Number of program executions, by backend.",
		}, []string{"backend"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tetra_run_duration_seconds",
			Help:    "Wall-clock duration of a program execution, by backend.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		RuntimePanics: factory.NewCounter(prometheus.CounterOpts{
			Name: "tetra_runtime_panics_total",
			Help: "Number of runtime panics recovered during execution.",
		}),
	}, reg
}

// Serve exposes reg on addr at /metrics until the process exits. The
// CLI runs this in its own goroutine when --metrics-addr is set.
func Serve(addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
