package acorn

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus counters an [Injector] updates. All methods
// are safe on a nil receiver, which is how an injector without metrics
// behaves.
type Metrics struct {
	registry *prometheus.Registry

	Builds            *prometheus.CounterVec
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	SelectionFailures prometheus.Counter
	Invalidations     prometheus.Counter
}

// NewMetrics creates a collector whose metrics are registered on a private
// registry under the given namespace.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	builds := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Total number of instances produced by Build",
		},
		[]string{"source"},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_cache_hits_total",
			Help:      "Total number of constructor signatures served from cache",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_cache_misses_total",
			Help:      "Total number of constructor selections performed",
		},
	)

	selectionFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_failures_total",
			Help:      "Total number of types with no suitable constructor",
		},
	)

	invalidations := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Total number of signature cache invalidations and clears",
		},
	)

	registry.MustRegister(builds, cacheHits, cacheMisses, selectionFailures, invalidations)

	return &Metrics{
		registry:          registry,
		Builds:            builds,
		CacheHits:         cacheHits,
		CacheMisses:       cacheMisses,
		SelectionFailures: selectionFailures,
		Invalidations:     invalidations,
	}
}

// Registry returns the gatherer holding the injector metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) observeBuild(s Source) {
	if m == nil {
		return
	}
	m.Builds.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) observeLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) observeSelectionFailure() {
	if m == nil {
		return
	}
	m.SelectionFailures.Inc()
}

func (m *Metrics) observeInvalidation() {
	if m == nil {
		return
	}
	m.Invalidations.Inc()
}
