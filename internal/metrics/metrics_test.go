package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Fetches.WithLabelValues(ResultFresh).Inc()
	m.Fetches.WithLabelValues(ResultError).Add(2)
	m.ParseFailures.Inc()
	m.Refreshed(time.Unix(1668196969, 0), 16)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Fetches.WithLabelValues(ResultFresh)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Fetches.WithLabelValues(ResultError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ParseFailures))
	assert.Equal(t, float64(16), testutil.ToFloat64(m.Collections))
	assert.Equal(t, float64(1668196969), testutil.ToFloat64(m.LastRefresh))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)

	assert.Panics(t, func() { New(reg) })
}
