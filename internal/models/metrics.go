package models

// CoreMetrics are the always-computed performance aggregates of a daily
// series. All percentages are in percent units (1.0 == 1%).
type CoreMetrics struct {
	TotalReturnPct      float64 `json:"totalReturnPct"`
	AnnualizedReturnPct float64 `json:"annualizedReturnPct"`
	VolatilityPct       float64 `json:"volatilityPct"`
	SharpeRatio         float64 `json:"sharpeRatio"`
	SortinoRatio        float64 `json:"sortinoRatio"`
	MaxDrawdownPct      float64 `json:"maxDrawdownPct"`
	CalmarRatio         float64 `json:"calmarRatio"`
}

// RiskMetrics are optional tail-risk aggregates. VaR values use nearest-rank
// selection on the sorted daily returns, not interpolated quantiles.
type RiskMetrics struct {
	VaR95Pct             float64 `json:"var95Pct"`
	VaR99Pct             float64 `json:"var99Pct"`
	ExpectedShortfallPct float64 `json:"expectedShortfallPct"`
	Skewness             float64 `json:"skewness"`
	Kurtosis             float64 `json:"kurtosis"`
}

// BenchmarkMetrics are optional benchmark-relative aggregates over the
// date-matched overlap of portfolio and benchmark daily returns.
type BenchmarkMetrics struct {
	Benchmark           string  `json:"benchmark"`
	Alpha               float64 `json:"alpha"`
	Beta                float64 `json:"beta"`
	Correlation         float64 `json:"correlation"`
	TrackingErrorPct    float64 `json:"trackingErrorPct"`
	InformationRatio    float64 `json:"informationRatio"`
	BenchmarkReturnPct  float64 `json:"benchmarkReturnPct"`
	AnnualizedBenchPct  float64 `json:"annualizedBenchmarkReturnPct"`
	OutperformancePct   float64 `json:"outperformancePct"`
	OverlappingDays     int     `json:"overlappingDays"`
}

// DrawdownPeriod is one contiguous interval during which NAV stayed below a
// prior peak. An open interval at series end has Recovered=false.
type DrawdownPeriod struct {
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	DepthPct     float64 `json:"depthPct"`
	DurationDays int     `json:"durationDays"`
	Recovered    bool    `json:"recovered"`
}

// DrawdownData is the optional drawdown-period breakdown: the most recent
// five periods plus the drawdown relative to the all-time peak on the last
// day of the series.
type DrawdownData struct {
	MaxDrawdownPct     float64          `json:"maxDrawdownPct"`
	CurrentDrawdownPct float64          `json:"currentDrawdownPct"`
	Periods            []DrawdownPeriod `json:"periods"`
}

// ReportMetrics bundles every metric block attached to a report. Risk,
// drawdown, and benchmark blocks are nil unless requested (or, for
// benchmark, unless the benchmark series was available).
type ReportMetrics struct {
	Core      CoreMetrics       `json:"core"`
	Risk      *RiskMetrics      `json:"risk,omitempty"`
	Drawdown  *DrawdownData     `json:"drawdown,omitempty"`
	Benchmark *BenchmarkMetrics `json:"benchmark,omitempty"`
}
