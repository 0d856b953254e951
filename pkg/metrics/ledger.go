package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics counts what the stock engine does.
type LedgerMetrics struct {
	movements    *prometheus.CounterVec
	transactions *prometheus.CounterVec
	rejections   *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger counters on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_recorded_total",
		Help: "Stock movements appended to the audit trail.",
	}, []string{"kind"})
	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transactions_committed_total",
		Help: "Commercial transactions committed.",
	}, []string{"channel"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_rejections_total",
		Help: "Operations rejected before any write occurred.",
	}, []string{"reason"})
	reg.MustRegister(movements, transactions, rejections)
	return &LedgerMetrics{
		movements:    movements,
		transactions: transactions,
		rejections:   rejections,
	}
}

// IncMovement counts one recorded movement of the given kind.
func (m *LedgerMetrics) IncMovement(kind string) {
	if m == nil || m.movements == nil {
		return
	}
	m.movements.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncTransaction counts one committed transaction on the given channel.
func (m *LedgerMetrics) IncTransaction(channel string) {
	if m == nil || m.transactions == nil {
		return
	}
	m.transactions.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncRejection counts one rejected operation by reason.
func (m *LedgerMetrics) IncRejection(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
