package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// LedgerMetrics exposes counters for payment ledger operations.
type LedgerMetrics struct {
	paymentsTotal *prometheus.CounterVec
	syncFailures  *prometheus.CounterVec
	amountTotal   *prometheus.CounterVec
}

func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "ledger",
			Name:      "payments_total",
			Help:      "Total payment operations by outcome",
		}, []string{"operation", "method", "result"}),
		syncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "ledger",
			Name:      "sync_failures_total",
			Help:      "Payment operations rolled back because a ledger step failed",
		}, []string{"step"}),
		amountTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "ledger",
			Name:      "amount_total",
			Help:      "Sum of money moved by committed payment operations",
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.paymentsTotal, m.syncFailures, m.amountTotal)
	return m
}

// ObservePayment records one payment operation. amount is only added on success.
func (m *LedgerMetrics) ObservePayment(operation, method string, amount decimal.Decimal, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.paymentsTotal.WithLabelValues(operation, method, result).Inc()
	if err == nil {
		m.amountTotal.WithLabelValues(operation).Add(amount.Abs().InexactFloat64())
	}
}

func (m *LedgerMetrics) ObserveSyncFailure(step string) {
	if m == nil {
		return
	}
	m.syncFailures.WithLabelValues(step).Inc()
}
