package observability

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EscrowMetrics records settlement-engine activity: one counter per
// operation/outcome pair and a running total of value moved per operation.
type EscrowMetrics struct {
	ops   *prometheus.CounterVec
	value *prometheus.CounterVec
}

var (
	escrowMetricsOnce sync.Once
	escrowRegistry    *EscrowMetrics
)

// Escrow returns the lazily-initialised escrow metrics registry.
func Escrow() *EscrowMetrics {
	escrowMetricsOnce.Do(func() {
		escrowRegistry = &EscrowMetrics{
			ops: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "fixpay",
				Subsystem: "escrow",
				Name:      "ops_total",
				Help:      "Total escrow engine operations segmented by operation and outcome.",
			}, []string{"op", "outcome"}),
			value: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "fixpay",
				Subsystem: "escrow",
				Name:      "value_total",
				Help:      "Total value moved by settlement operations.",
			}, []string{"op"}),
		}
		prometheus.MustRegister(escrowRegistry.ops, escrowRegistry.value)
	})
	return escrowRegistry
}

// RecordOp counts one engine operation with its outcome.
func (m *EscrowMetrics) RecordOp(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ops.WithLabelValues(op, outcome).Inc()
}

// RecordValue accumulates the amount moved by a settlement operation.
// Amounts outside float64 range are clamped by the conversion; the counter
// is advisory, the ledger remains the source of truth.
func (m *EscrowMetrics) RecordValue(op string, amount *big.Int) {
	if m == nil || amount == nil || amount.Sign() <= 0 {
		return
	}
	approx, _ := new(big.Float).SetInt(amount).Float64()
	m.value.WithLabelValues(op).Add(approx)
}
