package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/nextup-labs/nxt-ledger/internal/metrics"
)

func TestObserveTransaction(t *testing.T) {
	committed := testutil.ToFloat64(metrics.Transactions.WithLabelValues("purchase", metrics.STATUS_COMMITTED))
	reverted := testutil.ToFloat64(metrics.Transactions.WithLabelValues("purchase", metrics.STATUS_REVERTED))
	reason := testutil.ToFloat64(metrics.Reverts.WithLabelValues("Admin: Insufficient balance"))

	metrics.ObserveTransaction("purchase", metrics.STATUS_COMMITTED, "")
	metrics.ObserveTransaction("purchase", metrics.STATUS_REVERTED, "Admin: Insufficient balance")
	metrics.ObserveTransaction("purchase", metrics.STATUS_FAILED, "ignored")

	assert.Equal(t, committed+1, testutil.ToFloat64(metrics.Transactions.WithLabelValues("purchase", metrics.STATUS_COMMITTED)))
	assert.Equal(t, reverted+1, testutil.ToFloat64(metrics.Transactions.WithLabelValues("purchase", metrics.STATUS_REVERTED)))
	assert.Equal(t, reason+1, testutil.ToFloat64(metrics.Reverts.WithLabelValues("Admin: Insufficient balance")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.Reverts.WithLabelValues("ignored")))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.CollectAndCount(metrics.RequestDuration)

	metrics.ObserveRequest("GET", "", 404, 3*time.Millisecond)
	metrics.ObserveRequest("GET", "/api/v1/sale", 200, time.Millisecond)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(metrics.RequestDuration), before+1)
}
