package series

import (
	"sort"

	"github.com/report-enclave/internal/models"
)

// AggregateMonthly compounds the daily series into calendar-month buckets.
// The month's net return is the ratio of the last day's cumulative factor to
// the first day's, never the arithmetic sum of daily percentages. AUM is the
// NAV on the month's last day. Output is sorted by month ascending.
func AggregateMonthly(daily []models.DailyReturn) []models.MonthlyReturn {
	if len(daily) == 0 {
		return nil
	}

	byMonth := make(map[string][]models.DailyReturn)
	for _, day := range daily {
		month := day.Date[:7] // YYYY-MM
		byMonth[month] = append(byMonth[month], day)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	results := make([]models.MonthlyReturn, 0, len(months))
	for _, month := range months {
		days := byMonth[month]
		first := days[0]
		last := days[len(days)-1]

		netReturnPct := 0.0
		if first.CumulativeReturnFactor != 0 {
			netReturnPct = (last.CumulativeReturnFactor/first.CumulativeReturnFactor - 1) * 100
		}

		// Benchmark monthly return compounds the month's daily fractions.
		benchFactor := 1.0
		for _, day := range days {
			benchFactor *= 1 + day.BenchmarkReturnPct/100
		}
		benchReturnPct := (benchFactor - 1) * 100

		results = append(results, models.MonthlyReturn{
			Month:              month,
			NetReturnPct:       netReturnPct,
			BenchmarkReturnPct: benchReturnPct,
			OutperformancePct:  netReturnPct - benchReturnPct,
			AUM:                last.NAV,
		})
	}

	return results
}
