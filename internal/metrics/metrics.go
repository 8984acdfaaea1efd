// Package metrics exports bridge and robot activity as Prometheus
// collectors.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/robot"
)

// Options controls collector configuration.
type Options struct {
	DrainBuckets []float64
}

// Exporter adapts async.Metrics and robot.Metrics to Prometheus collectors.
type Exporter struct {
	gatherer prom.Gatherer

	tasksSubmitted    *prom.CounterVec
	taskFailures      prom.Counter
	aggregatorPending prom.Gauge
	drainSeconds      prom.Histogram
	primitiveTimeouts *prom.CounterVec
	gestures          *prom.CounterVec
}

var (
	_ async.Metrics = (*Exporter)(nil)
	_ robot.Metrics = (*Exporter)(nil)
)

// New creates and registers the collectors on reg. A nil reg uses a fresh
// registry, which Handler then serves.
func New(namespace string, reg *prom.Registry, opts Options) (*Exporter, error) {
	if namespace == "" {
		namespace = "harness"
	}
	if reg == nil {
		reg = prom.NewRegistry()
	}
	buckets := opts.DrainBuckets
	if len(buckets) == 0 {
		buckets = prom.ExponentialBuckets(0.001, 2, 12)
	}

	submitted := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_submitted_total",
		Help:      "Tasks submitted through the bridge, by where they ran.",
	}, []string{"target"})
	failures := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_failures_total",
		Help:      "Tasks that ended in an error or panic.",
	})
	pending := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "aggregator_pending",
		Help:      "Failures recorded but not yet delivered.",
	})
	drain := prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "drain_seconds",
		Help:      "Time spent waiting for the UI goroutine to settle.",
		Buckets:   buckets,
	})
	timeouts := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "primitive_timeouts_total",
		Help:      "Input primitives that exceeded their timeout.",
	}, []string{"op"})
	gestures := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "gestures_total",
		Help:      "Gestures issued, by kind.",
	}, []string{"gesture"})

	var err error
	if submitted, err = registerCollector(reg, submitted); err != nil {
		return nil, err
	}
	if failures, err = registerCollector(reg, failures); err != nil {
		return nil, err
	}
	if pending, err = registerCollector(reg, pending); err != nil {
		return nil, err
	}
	if drain, err = registerCollector(reg, drain); err != nil {
		return nil, err
	}
	if timeouts, err = registerCollector(reg, timeouts); err != nil {
		return nil, err
	}
	if gestures, err = registerCollector(reg, gestures); err != nil {
		return nil, err
	}

	return &Exporter{
		gatherer:          reg,
		tasksSubmitted:    submitted,
		taskFailures:      failures,
		aggregatorPending: pending,
		drainSeconds:      drain,
		primitiveTimeouts: timeouts,
		gestures:          gestures,
	}, nil
}

func (e *Exporter) TaskSubmitted(target string) {
	if e == nil {
		return
	}
	e.tasksSubmitted.WithLabelValues(normalizeLabel(target, "unknown")).Inc()
}

func (e *Exporter) TaskFailed() {
	if e == nil {
		return
	}
	e.taskFailures.Inc()
}

func (e *Exporter) AggregatorPending(n int) {
	if e == nil {
		return
	}
	e.aggregatorPending.Set(float64(n))
}

func (e *Exporter) DrainObserved(d time.Duration) {
	if e == nil {
		return
	}
	e.drainSeconds.Observe(d.Seconds())
}

func (e *Exporter) PrimitiveTimedOut(op string) {
	if e == nil {
		return
	}
	e.primitiveTimeouts.WithLabelValues(normalizeLabel(op, "unknown")).Inc()
}

func (e *Exporter) GestureObserved(gesture string) {
	if e == nil {
		return
	}
	e.gestures.WithLabelValues(normalizeLabel(gesture, "unknown")).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.gatherer, promhttp.HandlerOpts{})
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
