package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterDaysFinalized       prometheus.Counter
	CounterDaysRecomputed      prometheus.Counter
	CounterReconcileFailures   *prometheus.CounterVec
	CounterWorkoutsLogged      *prometheus.CounterVec
	CounterHandleRequestPanics prometheus.Counter

	// gauges
	GaugeCurrentLevel prometheus.Gauge

	// histograms
	HistRequestDuration  prometheus.Histogram
	HistFinalizeDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("fitlevel", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitlevel", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterDaysFinalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "days_finalized",
			Help:      "Number of past days whose level was committed by a finalization pass",
		}),
		CounterDaysRecomputed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "days_recomputed",
			Help:      "Number of day levels rewritten after an edit",
		}),
		CounterReconcileFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconcile_failures",
			Help:      "Finalization or recompute passes aborted by a storage error",
		}, []string{"op"}),
		CounterWorkoutsLogged: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts_logged",
			Help:      "Number of workouts created, by type",
		}, []string{"type"}),
		CounterHandleRequestPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic",
			Help:      "The total number of serve request panics",
		}),
		GaugeCurrentLevel: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_level",
			Help:      "Most recently committed level",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}),
		HistFinalizeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
			Name:      "finalize_duration_seconds",
			Help:      "Duration of a single finalization pass in seconds",
		}),
	}
}
