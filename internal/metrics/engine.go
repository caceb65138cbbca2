// Package metrics computes performance, risk, drawdown, and benchmark
// aggregates over a daily return series. Every calculation is a pure
// function of the series and the engine's two constants.
package metrics

import (
	"math"

	"github.com/report-enclave/internal/config"
	"github.com/report-enclave/internal/models"
)

// Engine computes metrics with a fixed annualization factor and risk-free
// rate. Both are configuration constants, never inferred from the data.
type Engine struct {
	annualization float64
	riskFreePct   float64
}

// NewEngine creates a metrics engine from config
func NewEngine(cfg config.MetricsConfig) *Engine {
	return &Engine{
		annualization: cfg.AnnualizationFactor,
		riskFreePct:   cfg.RiskFreeRatePct,
	}
}

// Core computes the always-on performance aggregates of the daily series.
func (e *Engine) Core(daily []models.DailyReturn) models.CoreMetrics {
	m := models.CoreMetrics{}
	if len(daily) == 0 {
		return m
	}

	last := daily[len(daily)-1]
	m.TotalReturnPct = (last.CumulativeReturnFactor - 1) * 100
	m.AnnualizedReturnPct = e.annualize(m.TotalReturnPct, len(daily))

	fractions := dailyFractions(daily)
	m.VolatilityPct = sampleStdDev(fractions) * math.Sqrt(e.annualization) * 100

	if m.VolatilityPct != 0 {
		m.SharpeRatio = (m.AnnualizedReturnPct - e.riskFreePct) / m.VolatilityPct
	}

	downside := e.downsideDeviationPct(fractions)
	if downside != 0 {
		m.SortinoRatio = (m.AnnualizedReturnPct - e.riskFreePct) / downside
	}

	m.MaxDrawdownPct = maxDrawdownPct(daily)
	if m.MaxDrawdownPct != 0 {
		m.CalmarRatio = m.AnnualizedReturnPct / m.MaxDrawdownPct
	}

	return m
}

// annualize converts a total return in percent over n daily observations to
// an annualized percentage. Returns 0 when the horizon is empty.
func (e *Engine) annualize(totalReturnPct float64, n int) float64 {
	years := float64(n) / e.annualization
	if years <= 0 {
		return 0
	}
	return (math.Pow(1+totalReturnPct/100, 1/years) - 1) * 100
}

// downsideDeviationPct is the annualized standard deviation of negative
// daily fractions, computed against a zero mean over all observations.
func (e *Engine) downsideDeviationPct(fractions []float64) float64 {
	if len(fractions) < 2 {
		return 0
	}
	var sumSq float64
	for _, f := range fractions {
		if f < 0 {
			sumSq += f * f
		}
	}
	return math.Sqrt(sumSq/float64(len(fractions)-1)) * math.Sqrt(e.annualization) * 100
}

// maxDrawdownPct is the largest peak-to-trough NAV decline over the series,
// reported as a positive percentage. It is 0 iff NAV never decreases.
func maxDrawdownPct(daily []models.DailyReturn) float64 {
	var peak, maxDD float64
	for _, day := range daily {
		if day.NAV > peak {
			peak = day.NAV
		}
		if peak > 0 {
			dd := (peak - day.NAV) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// dailyFractions converts the series' percent returns to fractions.
func dailyFractions(daily []models.DailyReturn) []float64 {
	fractions := make([]float64, len(daily))
	for i, day := range daily {
		fractions[i] = day.NetReturnPct / 100
	}
	return fractions
}
