package metrics

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/report-enclave/internal/models"
)

func seriesFromNAVs(navs []float64) []models.DailyReturn {
	daily := make([]models.DailyReturn, len(navs))
	for i, nav := range navs {
		daily[i] = models.DailyReturn{Date: dayDate(i), NAV: nav}
	}
	return daily
}

func TestDrawdownEmptySeries(t *testing.T) {
	data := testEngine().Drawdown(nil)
	assert.Empty(t, data.Periods)
	assert.Zero(t, data.CurrentDrawdownPct)
}

func TestDrawdownRecoveredPeriod(t *testing.T) {
	// NAV dips 10% off the 110000 peak and bounces on the last day.
	data := testEngine().Drawdown(seriesFromNAVs([]float64{100000, 110000, 99000, 105000}))

	require.Len(t, data.Periods, 1)
	period := data.Periods[0]
	assert.InDelta(t, 10.0, period.DepthPct, 1e-9)
	assert.True(t, period.Recovered)
	assert.Equal(t, "2024-01-02", period.StartDate)
	assert.Equal(t, "2024-01-04", period.EndDate)
	assert.Equal(t, 2, period.DurationDays)

	assert.InDelta(t, 10.0, data.MaxDrawdownPct, 1e-9)
	// Last NAV 105000 against all-time peak 110000.
	assert.InDelta(t, 4.5454, data.CurrentDrawdownPct, 1e-3)
}

func TestDrawdownOpenPeriodAtSeriesEnd(t *testing.T) {
	data := testEngine().Drawdown(seriesFromNAVs([]float64{100000, 110000, 99000, 95000}))

	require.Len(t, data.Periods, 1)
	period := data.Periods[0]
	assert.False(t, period.Recovered)
	assert.InDelta(t, (110000.0-95000.0)/110000.0*100, period.DepthPct, 1e-9)
	assert.Equal(t, "2024-01-04", period.EndDate)
}

func TestDrawdownRenewedDeclineMeasuredFromPriorPeak(t *testing.T) {
	// A partial bounce closes the first period, but the renewed decline is
	// still anchored at the 110000 peak: the second period must reach the
	// series maximum drawdown, not the shallower drop from the bounce.
	data := testEngine().Drawdown(seriesFromNAVs([]float64{100000, 110000, 99000, 105000, 90000, 112000}))

	require.Len(t, data.Periods, 2)
	assert.InDelta(t, 10.0, data.Periods[0].DepthPct, 1e-9)
	assert.InDelta(t, (110000.0-90000.0)/110000.0*100, data.Periods[1].DepthPct, 1e-9)
	assert.True(t, data.Periods[1].Recovered)

	deepest := 0.0
	for _, period := range data.Periods {
		if period.DepthPct > deepest {
			deepest = period.DepthPct
		}
	}
	assert.InDelta(t, data.MaxDrawdownPct, deepest, 1e-9)
}

func TestDrawdownNonDecreasingNAV(t *testing.T) {
	data := testEngine().Drawdown(seriesFromNAVs([]float64{100000, 100000, 105000, 110000}))

	assert.Empty(t, data.Periods)
	assert.Zero(t, data.MaxDrawdownPct)
	assert.Zero(t, data.CurrentDrawdownPct)
}

func TestDrawdownKeepsMostRecentFivePeriods(t *testing.T) {
	// Seven dip-and-recover cycles produce seven periods; only the last
	// five survive.
	var navs []float64
	nav := 100000.0
	for i := 0; i < 7; i++ {
		navs = append(navs, nav, nav*0.95, nav*1.01)
		nav *= 1.01
	}
	data := testEngine().Drawdown(seriesFromNAVs(navs))

	assert.Len(t, data.Periods, 5)
	for _, period := range data.Periods {
		assert.True(t, period.Recovered)
		assert.InDelta(t, 5.0, period.DepthPct, 1e-6)
	}
}

func TestMaxDrawdownProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	navsGen := gen.SliceOfN(30, gen.Float64Range(1000, 1e6))

	properties.Property("max drawdown is never negative", prop.ForAll(
		func(navs []float64) bool {
			return maxDrawdownPct(seriesFromNAVs(navs)) >= 0
		},
		navsGen,
	))

	properties.Property("zero iff NAV non-decreasing", prop.ForAll(
		func(navs []float64) bool {
			nonDecreasing := true
			for i := 1; i < len(navs); i++ {
				if navs[i] < navs[i-1] {
					nonDecreasing = false
					break
				}
			}
			dd := maxDrawdownPct(seriesFromNAVs(navs))
			return (dd == 0) == nonDecreasing
		},
		navsGen,
	))

	properties.TestingRun(t)
}
