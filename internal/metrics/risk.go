package metrics

import (
	"math"
	"sort"

	"github.com/report-enclave/internal/models"
)

// Risk computes tail-risk aggregates over the daily series. VaR values are
// selected by nearest rank on the sorted ascending returns, not
// interpolated; skewness and kurtosis use population (divide-by-n)
// standardized moments, kurtosis reported as excess.
func (e *Engine) Risk(daily []models.DailyReturn) models.RiskMetrics {
	m := models.RiskMetrics{}
	if len(daily) == 0 {
		return m
	}

	sorted := make([]float64, len(daily))
	for i, day := range daily {
		sorted[i] = day.NetReturnPct
	}
	sort.Float64s(sorted)

	n := len(sorted)
	idx95 := int(math.Floor(float64(n) * 0.05))
	idx99 := int(math.Floor(float64(n) * 0.01))

	m.VaR95Pct = sorted[idx95]
	m.VaR99Pct = sorted[idx99]
	m.ExpectedShortfallPct = mean(sorted[:idx95+1])

	m.Skewness, m.Kurtosis = populationMoments(sorted)

	return m
}

// populationMoments returns the population skewness and excess kurtosis of
// the values. Both are 0 when the standard deviation is 0.
func populationMoments(values []float64) (skewness, kurtosis float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}

	m := mean(values)
	var m2, m3, m4 float64
	for _, v := range values {
		d := v - m
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n

	if m2 == 0 {
		return 0, 0
	}

	sd := math.Sqrt(m2)
	skewness = m3 / (sd * sd * sd)
	kurtosis = m4/(m2*m2) - 3
	return skewness, kurtosis
}
