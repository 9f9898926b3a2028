package metrics

import (
	"testing"
	"time"

	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDecodeMetrics(reg)

	m.ObserveDecode(20*time.Millisecond, 1024, 300, nil)
	m.ObserveDecode(5*time.Millisecond, 64, 0, decodeerr.New(decodeerr.Truncated, "short"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.decoded.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decoded.WithLabelValues("insufficient data")))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.frames), "кадры учитываются только при успехе")
	assert.Equal(t, 1088.0, testutil.ToFloat64(m.bytes))

	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheHit.WithLabelValues("miss")))

	count, err := testutil.GatherAndCount(reg, "boxcars_decode_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDecodeMetrics_SampleProcess(t *testing.T) {
	m := NewDecodeMetrics(prometheus.NewRegistry())
	require.NoError(t, m.SampleProcess())
	assert.Greater(t, testutil.ToFloat64(m.rss), 0.0)
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "resource limit", resultLabel(decodeerr.New(decodeerr.ResourceLimit, "x")))
	assert.Equal(t, "error", resultLabel(assert.AnError))
}
