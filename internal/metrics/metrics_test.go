package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tetra/internal/metrics"
)

func TestNewPipelineRegistersAgainstItsOwnRegistry(t *testing.T) {
	p1, reg1 := metrics.NewPipeline()
	p2, reg2 := metrics.NewPipeline()

	require.NotNil(t, p1)
	require.NotNil(t, p2)
	assert.NotSame(t, reg1, reg2, "each Pipeline must own an independent registry")
}

func TestPipelineCountersIncrement(t *testing.T) {
	p, _ := metrics.NewPipeline()

	p.ParseTotal.Inc()
	p.CheckTotal.Inc()
	p.CheckErrors.Inc()
	p.RunsTotal.WithLabelValues("interp").Inc()
	p.RunDuration.WithLabelValues("interp").Observe(0.01)
	p.RuntimePanics.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(p.ParseTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.CheckTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.CheckErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.RuntimePanics))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.RunsTotal.WithLabelValues("interp")))
}
