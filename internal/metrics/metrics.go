// Package metrics exposes Prometheus instrumentation for ledger operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the ledger service.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	PoolReserves      *prometheus.GaugeVec
}

// New registers the ledger collectors onto the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairshare",
			Name:      "operations_total",
			Help:      "Number of ledger operations by type and outcome.",
		}, []string{"op", "status"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fairshare",
			Name:      "operation_duration_seconds",
			Help:      "Time spent executing ledger operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		PoolReserves: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fairshare",
			Name:      "pool_reserves",
			Help:      "Current exchange pool reserves by group and side.",
		}, []string{"group", "side"}),
	}
}

// ObserveOp records one completed operation.
func (m *Metrics) ObserveOp(op, status string, seconds float64) {
	m.Operations.WithLabelValues(op, status).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(seconds)
}

// SetReserves updates the pool reserve gauges for a group.
func (m *Metrics) SetReserves(group string, groupCoin, reserveCurrency int64) {
	m.PoolReserves.WithLabelValues(group, "group_coin").Set(float64(groupCoin))
	m.PoolReserves.WithLabelValues(group, "reserve_currency").Set(float64(reserveCurrency))
}
