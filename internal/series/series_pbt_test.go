package series

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/report-enclave/internal/models"
)

// singleExchangeSeries builds one snapshot per consecutive day for a single
// exchange from a list of equities, funded by a day-one deposit.
func singleExchangeSeries(equities []float64) []*models.EquitySnapshot {
	snapshots := make([]*models.EquitySnapshot, 0, len(equities))
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, equity := range equities {
		deposits := 0.0
		if i == 0 {
			deposits = equity
		}
		snapshots = append(snapshots, &models.EquitySnapshot{
			UserUID:     "user-1",
			Exchange:    "binance",
			Timestamp:   base.AddDate(0, 0, i),
			TotalEquity: equity,
			Deposits:    deposits,
		})
	}
	return snapshots
}

func TestDailySeriesProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	equitiesGen := gen.SliceOfN(20, gen.Float64Range(1000, 1e7))

	properties.Property("first day net return is zero", prop.ForAll(
		func(equities []float64) bool {
			daily := BuildDailySeries(singleExchangeSeries(equities))
			return len(daily) == 0 || daily[0].NetReturnPct == 0
		},
		equitiesGen,
	))

	properties.Property("cumulative factor compounds forward", prop.ForAll(
		func(equities []float64) bool {
			daily := BuildDailySeries(singleExchangeSeries(equities))
			prev := 1.0
			for i, day := range daily {
				expected := prev * (1 + day.NetReturnPct/100)
				if math.Abs(day.CumulativeReturnFactor-expected) > 1e-6*math.Abs(expected) {
					return false
				}
				if i == 0 && day.CumulativeReturnFactor != 1+day.NetReturnPct/100 {
					return false
				}
				prev = day.CumulativeReturnFactor
			}
			return true
		},
		equitiesGen,
	))

	properties.Property("nav equals close equity", prop.ForAll(
		func(equities []float64) bool {
			daily := BuildDailySeries(singleExchangeSeries(equities))
			if len(daily) != len(equities) {
				return false
			}
			for i, day := range daily {
				if day.NAV != equities[i] {
					return false
				}
			}
			return true
		},
		equitiesGen,
	))

	properties.Property("monthly return equals factor ratio", prop.ForAll(
		func(equities []float64) bool {
			daily := BuildDailySeries(singleExchangeSeries(equities))
			monthly := AggregateMonthly(daily)
			byMonth := make(map[string][]models.DailyReturn)
			for _, day := range daily {
				byMonth[day.Date[:7]] = append(byMonth[day.Date[:7]], day)
			}
			for _, m := range monthly {
				days := byMonth[m.Month]
				want := (days[len(days)-1].CumulativeReturnFactor/days[0].CumulativeReturnFactor - 1) * 100
				if math.Abs(m.NetReturnPct-want) > 1e-6 {
					return false
				}
			}
			return true
		},
		equitiesGen,
	))

	properties.TestingRun(t)
}
