package metrics_test

import (
	"testing"

	"custody/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()

	require.NotPanics(t, func() { metrics.Register(reg) })
	assert.Panics(t, func() { metrics.Register(reg) }, "registering twice must fail")

	before := testutil.ToFloat64(metrics.CustodyOperationsTotal.WithLabelValues("initiate handoff", metrics.OutcomeAccepted))
	metrics.CustodyOperationsTotal.WithLabelValues("initiate handoff", metrics.OutcomeAccepted).Inc()
	assert.InDelta(t, before+1,
		testutil.ToFloat64(metrics.CustodyOperationsTotal.WithLabelValues("initiate handoff", metrics.OutcomeAccepted)), 0)

	count, err := testutil.GatherAndCount(reg, "custody_operations_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}
