package models

// DailyReturn is one time-weighted daily observation of the aggregated
// portfolio. Dates are UTC calendar dates in YYYY-MM-DD form so the series
// serializes deterministically.
//
// Invariant: CumulativeReturnFactor_t = CumulativeReturnFactor_{t-1} *
// (1 + NetReturnPct_t/100), starting at 1.0; the first day's NetReturnPct is
// always 0 because there is no prior baseline.
type DailyReturn struct {
	Date                   string  `json:"date"`
	NetReturnPct           float64 `json:"netReturnPct"`
	BenchmarkReturnPct     float64 `json:"benchmarkReturnPct"`
	OutperformancePct      float64 `json:"outperformancePct"`
	CumulativeReturnFactor float64 `json:"cumulativeReturnFactor"`
	NAV                    float64 `json:"nav"`
}

// MonthlyReturn is one calendar-month bucket of the daily series, derived by
// compounding the month's cumulative factors, never by summing daily
// percentages. Month is in YYYY-MM form.
type MonthlyReturn struct {
	Month              string  `json:"month"`
	NetReturnPct       float64 `json:"netReturnPct"`
	BenchmarkReturnPct float64 `json:"benchmarkReturnPct"`
	OutperformancePct  float64 `json:"outperformancePct"`
	AUM                float64 `json:"aum"`
}
