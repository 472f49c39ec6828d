// Package metrics holds the Prometheus instruments for agent records, identity checks
// and the profile cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	AgentsCreated       prometheus.Counter
	AgentsUpdated       prometheus.Counter
	AgentsDeleted       prometheus.Counter
	AgentTransitions    *prometheus.CounterVec
	AgentConflicts      prometheus.Counter
	IdentityValidations *prometheus.CounterVec
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	CacheErrors         prometheus.Counter
	EventsPublished     *prometheus.CounterVec
	ImportRows          *prometheus.CounterVec
	ServiceLatency      *prometheus.HistogramVec
}

// New registers on the default registry; call once per process.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers on reg. Tests pass a fresh prometheus.NewRegistry().
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AgentsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "fieldforce_agents_created_total",
			Help: "Total number of agents created",
		}),
		AgentsUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "fieldforce_agents_updated_total",
			Help: "Total number of agent profile updates",
		}),
		AgentsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "fieldforce_agents_deleted_total",
			Help: "Total number of agents deleted",
		}),
		AgentTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldforce_agent_status_transitions_total",
			Help: "Agent status transitions by target status",
		}, []string{"status"}),
		AgentConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "fieldforce_agent_identity_conflicts_total",
			Help: "Create or update attempts rejected because the identity number is already registered",
		}),
		IdentityValidations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldforce_identity_validations_total",
			Help: "Identity number validations by document type and outcome",
		}, []string{"id_type", "outcome"}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "fieldforce_agent_cache_hits_total",
			Help: "Agent profile cache hits",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "fieldforce_agent_cache_misses_total",
			Help: "Agent profile cache misses",
		}),
		CacheErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "fieldforce_agent_cache_errors_total",
			Help: "Agent profile cache operations that failed or were skipped by the circuit breaker",
		}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldforce_agent_events_published_total",
			Help: "Agent lifecycle events by type and outcome",
		}, []string{"type", "outcome"}),
		ImportRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldforce_agent_import_rows_total",
			Help: "CSV import rows by outcome",
		}, []string{"outcome"}),
		ServiceLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fieldforce_agent_service_duration_seconds",
			Help:    "Duration of agent service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementAgentsCreated() { m.AgentsCreated.Inc() }
func (m *Metrics) IncrementAgentsUpdated() { m.AgentsUpdated.Inc() }
func (m *Metrics) IncrementAgentsDeleted() { m.AgentsDeleted.Inc() }
func (m *Metrics) IncrementConflicts()     { m.AgentConflicts.Inc() }
func (m *Metrics) IncrementCacheHit()      { m.CacheHits.Inc() }
func (m *Metrics) IncrementCacheMiss()     { m.CacheMisses.Inc() }
func (m *Metrics) IncrementCacheError()    { m.CacheErrors.Inc() }

func (m *Metrics) IncrementTransition(status string) {
	m.AgentTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordIdentityValidation(idType string, valid bool) {
	outcome := OutcomeInvalid
	if valid {
		outcome = OutcomeValid
	}
	m.IdentityValidations.WithLabelValues(idType, outcome).Inc()
}

func (m *Metrics) RecordEventPublished(eventType string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.EventsPublished.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) RecordImportRow(ok bool) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	m.ImportRows.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.ServiceLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
