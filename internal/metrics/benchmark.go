package metrics

import (
	"math"

	"github.com/report-enclave/internal/models"
)

// minBenchmarkOverlap is the minimum number of date-matched observations
// required before benchmark-relative metrics are meaningful.
const minBenchmarkOverlap = 30

// Benchmark computes benchmark-relative metrics over the exact-date overlap
// of the daily series and a date-keyed benchmark return series. Dates absent
// from the benchmark are dropped from the merged set. With fewer than 30
// overlapping points every metric is 0.
func (e *Engine) Benchmark(daily []models.DailyReturn, benchmark map[string]float64, symbol string) models.BenchmarkMetrics {
	m := models.BenchmarkMetrics{Benchmark: symbol}

	var portfolio, bench []float64
	for _, day := range daily {
		if pct, ok := benchmark[day.Date]; ok {
			portfolio = append(portfolio, day.NetReturnPct)
			bench = append(bench, pct)
		}
	}
	m.OverlappingDays = len(portfolio)

	if len(portfolio) < minBenchmarkOverlap {
		return m
	}

	covariance := sampleCovariance(portfolio, bench)
	benchVariance := sampleVariance(bench)
	if benchVariance != 0 {
		m.Beta = covariance / benchVariance
	}

	portfolioTotal := compoundTotalPct(portfolio)
	benchTotal := compoundTotalPct(bench)
	annualizedPortfolio := e.annualize(portfolioTotal, len(portfolio))
	annualizedBench := e.annualize(benchTotal, len(bench))

	m.Alpha = annualizedPortfolio - (e.riskFreePct + m.Beta*(annualizedBench-e.riskFreePct))

	sdPortfolio := sampleStdDev(portfolio)
	sdBench := sampleStdDev(bench)
	if sdPortfolio != 0 && sdBench != 0 {
		m.Correlation = covariance / (sdPortfolio * sdBench)
	}

	active := make([]float64, len(portfolio))
	activeFractions := make([]float64, len(portfolio))
	for i := range portfolio {
		active[i] = portfolio[i] - bench[i]
		activeFractions[i] = active[i] / 100
	}
	m.TrackingErrorPct = sampleStdDev(activeFractions) * math.Sqrt(e.annualization) * 100
	if m.TrackingErrorPct != 0 {
		m.InformationRatio = (annualizedPortfolio - annualizedBench) / m.TrackingErrorPct
	}

	m.BenchmarkReturnPct = benchTotal
	m.AnnualizedBenchPct = annualizedBench
	m.OutperformancePct = portfolioTotal - benchTotal

	return m
}

// compoundTotalPct compounds daily percent returns into a total percentage.
func compoundTotalPct(returnsPct []float64) float64 {
	factor := 1.0
	for _, pct := range returnsPct {
		factor *= 1 + pct/100
	}
	return (factor - 1) * 100
}
