package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Consumption results.
const (
	ResultCharged      = "charged"
	ResultInsufficient = "insufficient_balance"
	ResultNotFound     = "not_found"
	ResultError        = "error"
)

// Import row outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeFailed     = "failed"
	OutcomeDuplicated = "duplicated"
)

// Delete scopes.
const (
	ScopeMember = "member"
	ScopeAll    = "all"
)

// LedgerMetrics holds Prometheus collectors for ledger operations. A nil or
// unregistered value is safe to use and records nothing.
type LedgerMetrics struct {
	consumptions   *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	deletes        *prometheus.CounterVec

	registerOnce sync.Once
}

// New returns metrics registered with registry, or inert metrics when registry is nil.
func New(registry prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{}
	m.Register(registry)
	return m
}

// Register registers the collectors with registry. Only the first call has any effect.
func (m *LedgerMetrics) Register(registry prometheus.Registerer) {
	if m == nil || registry == nil {
		return
	}

	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.consumptions = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "member_ledger_consumptions_total",
			Help: "Consumption attempts by result",
		}, []string{"result"})

		m.importRows = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "member_ledger_import_rows_total",
			Help: "CSV import rows by outcome",
		}, []string{"outcome"})

		m.deletes = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "member_ledger_delete_operations_total",
			Help: "Committed delete operations by scope, not rows removed",
		}, []string{"scope"})
	})
}

// ObserveConsumption counts one consumption attempt.
func (m *LedgerMetrics) ObserveConsumption(result string) {
	if m == nil || m.consumptions == nil {
		return
	}
	m.consumptions.WithLabelValues(result).Inc()
}

// ObserveImport adds the per-outcome counts of one committed import.
func (m *LedgerMetrics) ObserveImport(success, failed, duplicated int) {
	if m == nil || m.importRows == nil {
		return
	}
	m.importRows.WithLabelValues(OutcomeSuccess).Add(float64(success))
	m.importRows.WithLabelValues(OutcomeFailed).Add(float64(failed))
	m.importRows.WithLabelValues(OutcomeDuplicated).Add(float64(duplicated))
}

// ObserveDelete counts one committed delete operation of the given scope.
func (m *LedgerMetrics) ObserveDelete(scope string) {
	if m == nil || m.deletes == nil {
		return
	}
	m.deletes.WithLabelValues(scope).Inc()
}
