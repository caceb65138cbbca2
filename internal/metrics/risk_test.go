package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskMetricsEmptySeries(t *testing.T) {
	m := testEngine().Risk(nil)
	assert.Zero(t, m.VaR95Pct)
	assert.Zero(t, m.ExpectedShortfallPct)
}

func TestRiskMetricsNearestRankVaR(t *testing.T) {
	// 100 daily returns covering -50..49, one per value.
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = float64(i - 50)
	}
	daily := seriesFromReturns(returns)

	m := testEngine().Risk(daily)

	// Nearest rank, no interpolation: sorted[floor(100*0.05)] and
	// sorted[floor(100*0.01)].
	assert.Equal(t, -45.0, m.VaR95Pct)
	assert.Equal(t, -49.0, m.VaR99Pct)
	// Mean of sorted[0..5] = mean(-50..-45)
	assert.InDelta(t, -47.5, m.ExpectedShortfallPct, 1e-9)
}

func TestRiskMetricsMoments(t *testing.T) {
	// Discrete uniform distribution: skew 0, known negative excess kurtosis.
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = float64(i - 50)
	}
	daily := seriesFromReturns(returns)

	m := testEngine().Risk(daily)

	assert.InDelta(t, 0.0, m.Skewness, 1e-9)
	// Excess kurtosis of uniform over n points: -6(n^2+1)/(5(n^2-1))
	assert.InDelta(t, -1.20024, m.Kurtosis, 1e-4)
}

func TestRiskMetricsConstantSeries(t *testing.T) {
	daily := seriesFromReturns([]float64{1, 1, 1, 1})
	m := testEngine().Risk(daily)

	assert.Equal(t, 1.0, m.VaR95Pct)
	assert.Zero(t, m.Skewness)
	assert.Zero(t, m.Kurtosis)
}

func TestPopulationMoments(t *testing.T) {
	skew, kurt := populationMoments(nil)
	assert.Zero(t, skew)
	assert.Zero(t, kurt)

	// Right-skewed: {0, 0, 0, 4}
	skew, _ = populationMoments([]float64{0, 0, 0, 4})
	assert.Positive(t, skew)
}
