package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLedgerMetricsCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.IncMovement("sale")
	m.IncMovement("sale")
	m.IncTransaction("shopify")
	m.IncRejection("")

	if got := testutil.ToFloat64(m.movements.WithLabelValues("sale")); got != 2 {
		t.Fatalf("movement count = %v", got)
	}
	if got := testutil.ToFloat64(m.transactions.WithLabelValues("shopify")); got != 1 {
		t.Fatalf("transaction count = %v", got)
	}
	if got := testutil.ToFloat64(m.rejections.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("rejection count = %v", got)
	}
}

func TestLedgerMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *LedgerMetrics
	m.IncMovement("sale")
	m.IncTransaction("sale")
	m.IncRejection("capacity")

	zero := NewLedgerMetrics(nil)
	zero.IncMovement("sale")
}
