package observability

import (
	"context"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weaver"

// Metrics holds the collectors fed by the registry's lifecycle hooks.
// It implements prometheus.Collector.
type Metrics struct {
	bindings      prometheus.Gauge
	augmentations prometheus.Counter
	detaches      prometheus.Counter
	restorations  prometheus.Counter
	invocations   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

var _ prometheus.Collector = (*Metrics)(nil)

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		bindings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bindings",
			Help:      "Number of live bindings",
		}),
		augmentations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "augmentations_total",
			Help:      "Total number of successful augmentations",
		}),
		detaches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detaches_total",
			Help:      "Total number of detached hook groups",
		}),
		restorations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restorations_total",
			Help:      "Total number of restored targets",
		}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Total number of dispatched calls",
		}, []string{"owner", "name", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Duration of dispatched calls, hooks included",
			Buckets:   prometheus.DefBuckets,
		}, []string{"owner", "name"}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.bindings.Describe(ch)
	m.augmentations.Describe(ch)
	m.detaches.Describe(ch)
	m.restorations.Describe(ch)
	m.invocations.Describe(ch)
	m.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.bindings.Collect(ch)
	m.augmentations.Collect(ch)
	m.detaches.Collect(ch)
	m.restorations.Collect(ch)
	m.invocations.Collect(ch)
	m.duration.Collect(ch)
}

// Hooks returns the lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAugment: func(_ context.Context, e *domain.BindingEvent) {
			m.augmentations.Inc()
			if e.Created {
				m.bindings.Inc()
			}
		},
		OnDetach: func(context.Context, *domain.BindingEvent) {
			m.detaches.Inc()
		},
		OnRestore: func(context.Context, *domain.BindingEvent) {
			m.restorations.Inc()
			m.bindings.Dec()
		},
		OnInvoke: func(_ context.Context, e *domain.InvokeEvent) {
			m.invocations.WithLabelValues(e.Target.Owner, e.Target.Name, e.Outcome).Inc()
			m.duration.WithLabelValues(e.Target.Owner, e.Target.Name).Observe(e.Duration.Seconds())
		},
	}
}
