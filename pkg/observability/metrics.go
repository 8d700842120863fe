package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/automata/pkg/domain"
)

// verdictError labels runs that ended with an error instead of a verdict.
const verdictError = "error"

// Metrics owns a private registry so several instances (one per server or
// test) never collide on registration.
type Metrics struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	steps      prometheus.Histogram
	validation *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automata_runs_total",
				Help: "Total number of finished simulations by verdict",
			},
			[]string{"verdict"},
		),
		steps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "automata_run_steps",
				Help:    "Number of steps recorded per simulation",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		validation: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automata_validation_failures_total",
				Help: "Total number of rejected definitions by error code",
			},
			[]string{"code"},
		),
	}

	m.registry.MustRegister(
		m.runs,
		m.steps,
		m.validation,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns lifecycle hooks that record every finished run.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			m.ObserveRun(e)
		},
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(e *domain.RunEvent) {
	if e.Err != nil {
		m.runs.WithLabelValues(verdictError).Inc()
		return
	}
	m.runs.WithLabelValues(string(e.Verdict)).Inc()
	m.steps.Observe(float64(e.Steps))
}

// ObserveValidation records a failed validation. Nil errors are ignored;
// errors outside the domain taxonomy count as "internal".
func (m *Metrics) ObserveValidation(err error) {
	if err == nil {
		return
	}
	code := domain.Code(err)
	if code == "" {
		code = "internal"
	}
	m.validation.WithLabelValues(code).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, e.g. to add collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CombineHooks returns hooks that call every non-nil hook of each set, in
// order.
func CombineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks
	for _, h := range sets {
		if h.OnRunStart != nil {
			prev := combined.OnRunStart
			combined.OnRunStart = func(ctx context.Context, e *domain.RunEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnRunStart(ctx, e)
			}
		}
		if h.OnStep != nil {
			prev := combined.OnStep
			combined.OnStep = func(ctx context.Context, e *domain.StepEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnStep(ctx, e)
			}
		}
		if h.OnRunEnd != nil {
			prev := combined.OnRunEnd
			combined.OnRunEnd = func(ctx context.Context, e *domain.RunEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnRunEnd(ctx, e)
			}
		}
	}
	return combined
}
