package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/report-enclave/internal/models"
)

func TestAggregateMonthlyEmpty(t *testing.T) {
	assert.Nil(t, AggregateMonthly(nil))
}

func TestAggregateMonthlyCompoundsNotSums(t *testing.T) {
	daily := []models.DailyReturn{
		{Date: "2024-03-01", NetReturnPct: 0, CumulativeReturnFactor: 1.0, NAV: 100000},
		{Date: "2024-03-15", NetReturnPct: 10, CumulativeReturnFactor: 1.10, NAV: 110000},
		{Date: "2024-03-31", NetReturnPct: 10, CumulativeReturnFactor: 1.21, NAV: 121000},
	}

	monthly := AggregateMonthly(daily)

	require.Len(t, monthly, 1)
	assert.Equal(t, "2024-03", monthly[0].Month)
	// (1.21/1.0 - 1)*100 = 21%, not 0+10+10 = 20%
	assert.InDelta(t, 21.0, monthly[0].NetReturnPct, 1e-9)
	assert.Equal(t, 121000.0, monthly[0].AUM)
}

func TestAggregateMonthlySpansMonths(t *testing.T) {
	daily := []models.DailyReturn{
		{Date: "2024-03-30", CumulativeReturnFactor: 1.00, NAV: 100000},
		{Date: "2024-03-31", NetReturnPct: 2, CumulativeReturnFactor: 1.02, NAV: 102000},
		{Date: "2024-04-01", NetReturnPct: 1, CumulativeReturnFactor: 1.0302, NAV: 103020},
		{Date: "2024-04-02", NetReturnPct: -1, CumulativeReturnFactor: 1.019898, NAV: 101989.8},
	}

	monthly := AggregateMonthly(daily)

	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-03", monthly[0].Month)
	assert.Equal(t, "2024-04", monthly[1].Month)
	assert.InDelta(t, 2.0, monthly[0].NetReturnPct, 1e-9)
	// (1.019898/1.0302 - 1)*100 = -1%
	assert.InDelta(t, -1.0, monthly[1].NetReturnPct, 1e-9)
	assert.InDelta(t, 101989.8, monthly[1].AUM, 1e-6)
}

func TestAggregateMonthlyBenchmarkCompounds(t *testing.T) {
	daily := []models.DailyReturn{
		{Date: "2024-03-01", CumulativeReturnFactor: 1.0, BenchmarkReturnPct: 1, NAV: 100},
		{Date: "2024-03-02", NetReturnPct: 1, CumulativeReturnFactor: 1.01, BenchmarkReturnPct: 1, NAV: 101},
	}

	monthly := AggregateMonthly(daily)

	require.Len(t, monthly, 1)
	// (1.01*1.01 - 1)*100 = 2.01%
	assert.InDelta(t, 2.01, monthly[0].BenchmarkReturnPct, 1e-9)
	assert.InDelta(t, monthly[0].NetReturnPct-monthly[0].BenchmarkReturnPct, monthly[0].OutperformancePct, 1e-9)
}
