// Package metrics provides Prometheus metrics for the towncrier pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for one process.
type Manager struct {
	namespace string
	registry  prometheus.Registerer

	// Fetch stage
	eventsFetched   *prometheus.CounterVec
	fetchFailures   *prometheus.CounterVec
	fallbacksUsed   *prometheus.CounterVec
	alertsCollected prometheus.Counter

	// Scoring stage
	eventsScored    prometheus.Counter
	scoringFailures prometheus.Counter

	// Ticket stage
	ticketLookups   prometheus.Counter
	ticketCacheHits prometheus.Counter
	ticketMatches   prometheus.Counter
	ticketNoMatches prometheus.Counter
	rateLimitWaits  prometheus.Counter

	// Persistence
	sinkWriteFailures prometheus.Counter
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithRegistry sets a custom Prometheus registerer.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var registry = prometheus.NewRegistry() //nolint:gochecknoglobals // own registry, no default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(registry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "towncrier",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.eventsFetched = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "events_total",
		Help:      "Events returned by the provider, per category.",
	}, []string{"category"})
	m.fetchFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "failures_total",
		Help:      "Provider fetches that ended in transport, auth, or parse failure.",
	}, []string{"category"})
	m.fallbacksUsed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "fallbacks_total",
		Help:      "Categories substituted with persisted fallback events.",
	}, []string{"category"})
	m.alertsCollected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "alerts_total",
		Help:      "Events collected verbatim from alert categories.",
	})

	m.eventsScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "events_total",
		Help:      "Events run through the relevance scorer.",
	})
	m.scoringFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "failures_total",
		Help:      "Events that received the neutral default score.",
	})

	m.ticketLookups = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "tickets",
		Name:      "lookups_total",
		Help:      "Outbound ticket-catalog search calls.",
	})
	m.ticketCacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "tickets",
		Name:      "cache_hits_total",
		Help:      "Ticket resolutions answered from the match cache.",
	})
	m.ticketMatches = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "tickets",
		Name:      "matches_total",
		Help:      "Searches that produced a candidate above the acceptance threshold.",
	})
	m.ticketNoMatches = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "tickets",
		Name:      "no_matches_total",
		Help:      "Searches that produced no acceptable candidate.",
	})
	m.rateLimitWaits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "tickets",
		Name:      "rate_limit_waits_total",
		Help:      "Calls delayed by the minimum inter-call spacing or a 429 backoff.",
	})

	m.sinkWriteFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "sink",
		Name:      "write_failures_total",
		Help:      "Output documents that failed to persist.",
	})

	return m
}

// Package-level helpers operating on the global manager.

func RecordEventsFetched(category string, n int) {
	globalManager.eventsFetched.WithLabelValues(category).Add(float64(n))
}

func RecordFetchFailure(category string) {
	globalManager.fetchFailures.WithLabelValues(category).Inc()
}

func RecordFallbackUsed(category string) {
	globalManager.fallbacksUsed.WithLabelValues(category).Inc()
}

func RecordAlertsCollected(n int) {
	globalManager.alertsCollected.Add(float64(n))
}

func RecordEventScored() {
	globalManager.eventsScored.Inc()
}

func RecordScoringFailure() {
	globalManager.scoringFailures.Inc()
}

func RecordTicketLookup() {
	globalManager.ticketLookups.Inc()
}

func RecordTicketCacheHit() {
	globalManager.ticketCacheHits.Inc()
}

func RecordTicketMatch() {
	globalManager.ticketMatches.Inc()
}

func RecordTicketNoMatch() {
	globalManager.ticketNoMatches.Inc()
}

func RecordRateLimitWait() {
	globalManager.rateLimitWaits.Inc()
}

func RecordSinkWriteFailure() {
	globalManager.sinkWriteFailures.Inc()
}

// GetRegistry returns the registry backing the global manager, for exposers
// and tests.
func GetRegistry() *prometheus.Registry {
	return registry
}
