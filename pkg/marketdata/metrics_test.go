package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBacktestMetrics_KnownSeries(t *testing.T) {
	series := []float64{100, 110, 99, 121}

	m, err := ComputeBacktestMetrics(series, 10000)
	require.NoError(t, err)

	assert.InDelta(t, 0.21, m.TotalReturn, 1e-9)
	assert.InDelta(t, 12100, m.FinalEquity, 1e-6)
	assert.Equal(t, 4, m.Days)
	// Peak 110 to trough 99.
	assert.InDelta(t, 0.1, m.MaxDrawdown, 1e-9)
}

func TestComputeBacktestMetrics_FlatSeries(t *testing.T) {
	series := []float64{50, 50, 50, 50}

	m, err := ComputeBacktestMetrics(series, 1000)
	require.NoError(t, err)

	assert.Zero(t, m.TotalReturn)
	assert.Zero(t, m.MaxDrawdown)
	// Zero volatility must not divide by zero.
	assert.Zero(t, m.SharpeRatio)
	assert.Equal(t, 1000.0, m.FinalEquity)
}

func TestComputeBacktestMetrics_MonotonicLoss(t *testing.T) {
	series := []float64{100, 90, 80, 70}

	m, err := ComputeBacktestMetrics(series, 1000)
	require.NoError(t, err)

	assert.InDelta(t, -0.3, m.TotalReturn, 1e-9)
	assert.InDelta(t, 0.3, m.MaxDrawdown, 1e-9)
	assert.Negative(t, m.SharpeRatio)
	assert.Negative(t, m.AnnualizedReturn)
}

func TestComputeBacktestMetrics_TooShort(t *testing.T) {
	_, err := ComputeBacktestMetrics([]float64{100}, 1000)
	assert.Error(t, err)

	_, err = ComputeBacktestMetrics(nil, 1000)
	assert.Error(t, err)
}

func TestComputeBacktestMetrics_BadStart(t *testing.T) {
	_, err := ComputeBacktestMetrics([]float64{0, 10}, 1000)
	assert.Error(t, err)
}
