package metrics

import (
	"time"

	"github.com/report-enclave/internal/models"
)

// maxDrawdownPeriods caps the period breakdown at the most recent entries.
const maxDrawdownPeriods = 5

// Drawdown computes the drawdown-period breakdown of the daily series. A
// period opens on the day NAV first drops below the running peak, anchored
// at the prior day, and closes with Recovered=true on the first day NAV
// rises off the period's trough. The running peak survives the close until
// NAV makes a new high, so a renewed decline after a partial bounce is
// measured from the true prior peak and the deepest listed period matches
// MaxDrawdownPct. A period still falling at series end is reported with
// Recovered=false.
func (e *Engine) Drawdown(daily []models.DailyReturn) models.DrawdownData {
	data := models.DrawdownData{Periods: []models.DrawdownPeriod{}}
	if len(daily) == 0 {
		return data
	}

	data.MaxDrawdownPct = maxDrawdownPct(daily)

	var periods []models.DrawdownPeriod
	peak := daily[0].NAV
	inDrawdown := false
	var startDate string
	var trough float64

	for i, day := range daily {
		switch {
		case inDrawdown && day.NAV > trough:
			// Recovery begun: close the period. The peak only advances on a
			// new high.
			periods = append(periods, closedPeriod(startDate, day.Date, peak, trough, true))
			inDrawdown = false
			if day.NAV > peak {
				peak = day.NAV
			}

		case inDrawdown:
			trough = day.NAV

		case day.NAV < peak && i > 0:
			startDate = daily[i-1].Date
			trough = day.NAV
			inDrawdown = true

		case day.NAV > peak:
			peak = day.NAV
		}
	}

	if inDrawdown {
		last := daily[len(daily)-1]
		periods = append(periods, closedPeriod(startDate, last.Date, peak, trough, false))
	}

	if len(periods) > maxDrawdownPeriods {
		periods = periods[len(periods)-maxDrawdownPeriods:]
	}
	data.Periods = periods

	// Drawdown relative to the all-time peak as of the last day.
	allTimePeak := 0.0
	for _, day := range daily {
		if day.NAV > allTimePeak {
			allTimePeak = day.NAV
		}
	}
	if allTimePeak > 0 {
		lastNAV := daily[len(daily)-1].NAV
		if lastNAV < allTimePeak {
			data.CurrentDrawdownPct = (allTimePeak - lastNAV) / allTimePeak * 100
		}
	}

	return data
}

func closedPeriod(startDate, endDate string, peak, trough float64, recovered bool) models.DrawdownPeriod {
	depth := 0.0
	if peak > 0 {
		depth = (peak - trough) / peak * 100
	}
	return models.DrawdownPeriod{
		StartDate:    startDate,
		EndDate:      endDate,
		DepthPct:     depth,
		DurationDays: daysBetween(startDate, endDate),
		Recovered:    recovered,
	}
}

// daysBetween returns the whole days from start to end, both YYYY-MM-DD.
func daysBetween(start, end string) int {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return 0
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return 0
	}
	return int(e.Sub(s).Hours() / 24)
}
