package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLedgerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Register(reg)

	m.ObserveConsumption(ResultCharged)
	m.ObserveConsumption(ResultCharged)
	m.ObserveConsumption(ResultInsufficient)
	m.ObserveImport(2, 1, 3)
	m.ObserveDelete(ScopeMember)
	m.ObserveDelete(ScopeMember)
	m.ObserveDelete(ScopeAll)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.consumptions.WithLabelValues(ResultCharged)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.consumptions.WithLabelValues(ResultInsufficient)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.importRows.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.importRows.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.importRows.WithLabelValues(OutcomeDuplicated)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.deletes.WithLabelValues(ScopeMember)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deletes.WithLabelValues(ScopeAll)))
}

func TestLedgerMetrics_NilSafe(t *testing.T) {
	var m *LedgerMetrics
	assert.NotPanics(t, func() {
		m.Register(prometheus.NewRegistry())
		m.ObserveConsumption(ResultError)
		m.ObserveImport(1, 1, 1)
		m.ObserveDelete(ScopeAll)
	})

	inert := New(nil)
	assert.NotPanics(t, func() {
		inert.ObserveConsumption(ResultCharged)
		inert.ObserveDelete(ScopeMember)
	})
}
