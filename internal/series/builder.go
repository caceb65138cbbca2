// Package series converts per-exchange equity snapshots into time-weighted
// daily and monthly return series.
package series

import (
	"sort"

	"github.com/report-enclave/internal/models"
)

// BuildDailySeries converts a flat list of per-exchange snapshots into an
// ordered daily return series, one entry per calendar date that has at least
// one snapshot.
//
// The return for each day is a time-weighted approximation: recorded and
// synthetic cashflows are removed from the equity delta before dividing by
// the previous day's equity. Synthetic cashflows are imputed when an
// exchange key reappears after dropping out (deposit) or disappears without
// a recorded withdrawal (withdrawal), so exchange churn does not register as
// performance.
func BuildDailySeries(snapshots []*models.EquitySnapshot) []models.DailyReturn {
	if len(snapshots) == 0 {
		return nil
	}

	closes := closeSnapshotsByDate(snapshots)

	dates := make([]string, 0, len(closes))
	for date := range closes {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	// Exchange keys present on a prior date and not yet classified as
	// disappeared, keys ever observed, and the last equity recorded for
	// each key. lastKnownEquity is bookkeeping only; a silent exchange is
	// never forward-filled into the equity sum.
	seen := make(map[string]bool)
	everSeen := make(map[string]bool)
	lastKnownEquity := make(map[string]float64)

	results := make([]models.DailyReturn, 0, len(dates))
	previousEquity := 0.0
	cumulativeFactor := 1.0

	for _, date := range dates {
		day := closes[date]

		var totalEquity, deposits, withdrawals float64
		var virtualDeposit, virtualWithdrawal float64

		for key, snap := range day {
			totalEquity += snap.TotalEquity
			deposits += snap.Deposits
			withdrawals += snap.Withdrawals

			// Capital reappearing without a recorded inflow: the key was
			// tracked before, dropped out, and shows up again today.
			if !seen[key] && everSeen[key] && snap.Deposits == 0 {
				virtualDeposit += snap.TotalEquity
			}
		}

		// Capital disappearing without a recorded outflow: the key was
		// present on the previous date but has no snapshot today.
		for key := range seen {
			if _, present := day[key]; !present {
				virtualWithdrawal += lastKnownEquity[key]
				delete(seen, key)
			}
		}

		for key, snap := range day {
			seen[key] = true
			everSeen[key] = true
			lastKnownEquity[key] = snap.TotalEquity
		}

		netCashflow := deposits - withdrawals + virtualDeposit - virtualWithdrawal

		netReturnPct := 0.0
		if previousEquity > 0 {
			netReturnPct = (totalEquity - previousEquity - netCashflow) / previousEquity * 100
		}

		cumulativeFactor *= 1 + netReturnPct/100

		results = append(results, models.DailyReturn{
			Date:                   date,
			NetReturnPct:           netReturnPct,
			BenchmarkReturnPct:     0,
			OutperformancePct:      netReturnPct,
			CumulativeReturnFactor: cumulativeFactor,
			NAV:                    totalEquity,
		})

		previousEquity = totalEquity
	}

	return results
}

// closeSnapshotsByDate groups snapshots by (date, exchange key) and keeps the
// chronologically last snapshot of each pair as that exchange's close for the
// day.
func closeSnapshotsByDate(snapshots []*models.EquitySnapshot) map[string]map[string]*models.EquitySnapshot {
	closes := make(map[string]map[string]*models.EquitySnapshot)
	for _, snap := range snapshots {
		date := snap.Date()
		key := snap.ExchangeKey()

		day, ok := closes[date]
		if !ok {
			day = make(map[string]*models.EquitySnapshot)
			closes[date] = day
		}

		current, ok := day[key]
		if !ok || snap.Timestamp.After(current.Timestamp) {
			day[key] = snap
		}
	}
	return closes
}

// ExchangeKeys returns the distinct exchange keys observed across the
// snapshots, sorted ascending.
func ExchangeKeys(snapshots []*models.EquitySnapshot) []string {
	set := make(map[string]bool)
	for _, snap := range snapshots {
		set[snap.ExchangeKey()] = true
	}

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ApplyBenchmark overlays a date-keyed benchmark return series onto the
// daily series in place. Days absent from the benchmark keep a zero
// benchmark return; outperformance is recomputed for every day.
func ApplyBenchmark(daily []models.DailyReturn, benchmark map[string]float64) {
	for i := range daily {
		if pct, ok := benchmark[daily[i].Date]; ok {
			daily[i].BenchmarkReturnPct = pct
		} else {
			daily[i].BenchmarkReturnPct = 0
		}
		daily[i].OutperformancePct = daily[i].NetReturnPct - daily[i].BenchmarkReturnPct
	}
}
