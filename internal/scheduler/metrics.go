package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the scheduler's Prometheus instrumentation (§4.5's
// task bookkeeping and §5's step budget, made observable). Grounded on
// dshills-langgraph-go/graph/metrics.go's PrometheusMetrics: a small
// struct of promauto-built collectors behind a namespace, registered
// once against a caller-supplied registry rather than the global
// default so that tests and multiple Schedulers in one process never
// collide on a duplicate-registration panic.
type Metrics struct {
	mu sync.Mutex

	taskCount           prometheus.Gauge
	stepBudgetRemaining prometheus.Gauge
	effectInvocations   *prometheus.CounterVec
}

// NewMetrics builds and registers a Metrics against registry (use
// prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer for the global one). It is not wired
// into a Scheduler until passed to Scheduler.EnableMetrics.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		taskCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "airvm",
			Subsystem: "scheduler",
			Name:      "tasks_active",
			Help:      "Number of scheduler tasks currently started and not yet completed",
		}),
		stepBudgetRemaining: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "airvm",
			Subsystem: "scheduler",
			Name:      "step_budget_remaining",
			Help:      "Global steps remaining before CheckGlobalSteps reports NonTermination",
		}),
		effectInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airvm",
			Subsystem: "scheduler",
			Name:      "effect_invocations_total",
			Help:      "Cumulative count of effect(...) invocations by effect name",
		}, []string{"effect"}),
	}
}

func (m *Metrics) setTaskCount(n int) {
	if m == nil {
		return
	}
	m.taskCount.Set(float64(n))
}

func (m *Metrics) setStepBudgetRemaining(n int64) {
	if m == nil {
		return
	}
	if n < 0 {
		n = 0
	}
	m.stepBudgetRemaining.Set(float64(n))
}

// RecordEffect increments the per-effect-name invocation counter. Safe
// to call on a nil *Metrics (metrics disabled): eir and lir's effect
// instructions call this unconditionally, whether or not a Scheduler
// with metrics enabled is wired in underneath them.
func (m *Metrics) RecordEffect(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.effectInvocations.WithLabelValues(name).Inc()
}

// EnableMetrics wires m into s: Spawn/launch/completion update the
// task-count gauge and CheckGlobalSteps updates the step-budget-remaining
// gauge. Metrics stay disabled (nil, all updates no-ops) unless this is
// called — cmd/airvm calls it only when --metrics-addr is set, so a
// plain embedded run (or a test constructing many Schedulers) never
// touches Prometheus's global registry by accident.
func (s *Scheduler) EnableMetrics(m *Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
	m.setTaskCount(s.active)
	m.setStepBudgetRemaining(s.stepBudget - atomic.LoadInt64(&s.steps))
}
