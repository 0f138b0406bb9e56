package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_Idempotent(t *testing.T) {
	InitMetrics()
	InitMetrics()

	require.NotNil(t, HTTPRequestsTotal)
	require.NotNil(t, APIRequestsTotal)
	require.NotNil(t, ListFetchesTotal)
	require.NotNil(t, CircuitBreakerState)
}

func TestCounterVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"screen": "books", "result": "stale"}
	before := testutil.ToFloat64(ListFetchesTotal.With(labels))

	IncCounterVec(ListFetchesTotal, labels)
	IncCounterVec(ListFetchesTotal, labels)
	IncCounterVec(ListFetchesTotal, map[string]string{"screen": "books", "result": "applied"})

	assert.Equal(t, before+2, testutil.ToFloat64(ListFetchesTotal.With(labels)))
}

func TestGaugeVec(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "library-api"}, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(CircuitBreakerState.With(prometheus.Labels{"name": "library-api"})))
}

func TestHelpers_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		IncCounter(nil)
		IncCounterVec(nil, nil)
		IncGauge(nil)
		DecGauge(nil)
		SetGaugeVec(nil, nil, 1)
		ObserveHistogramVec(nil, nil, 1)
	})
}
