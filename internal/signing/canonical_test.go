package signing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/report-enclave/internal/models"
)

func TestCanonicalJSONSortsKeys(t *testing.T) {
	canonical, err := CanonicalJSON(map[string]interface{}{
		"zebra": 1,
		"alpha": map[string]interface{}{
			"nested": "value",
			"aaa":    2,
		},
		"mid": []interface{}{
			map[string]interface{}{"b": 1, "a": 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"alpha":{"aaa":2,"nested":"value"},"mid":[{"a":2,"b":1}],"zebra":1}`, string(canonical))
}

func TestCanonicalJSONDeterministic(t *testing.T) {
	data := sampleFinancialData()

	first, err := CanonicalJSON(data)
	require.NoError(t, err)
	second, err := CanonicalJSON(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCanonicalJSONPreservesNumericLiterals(t *testing.T) {
	canonical, err := CanonicalJSON(map[string]interface{}{
		"int":   42,
		"float": 1.005,
		"tiny":  0.0001,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"float":1.005,"int":42,"tiny":0.0001}`, string(canonical))
}

func TestHashFinancialDataStable(t *testing.T) {
	data := sampleFinancialData()

	first, err := HashFinancialData(data)
	require.NoError(t, err)
	second, err := HashFinancialData(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestHashFinancialDataSensitiveToContent(t *testing.T) {
	data := sampleFinancialData()
	baseline, err := HashFinancialData(data)
	require.NoError(t, err)

	mutated := data
	mutated.Metrics.Core.SharpeRatio += 0.000001
	changed, err := HashFinancialData(mutated)
	require.NoError(t, err)

	assert.NotEqual(t, baseline, changed)
}

func sampleFinancialData() models.SignedFinancialData {
	return models.SignedFinancialData{
		ReportID:     "TR-LX2M3K-9A4F21BC",
		UserUID:      "user-1",
		GeneratedAt:  "2024-04-01T10:00:00Z",
		PeriodStart:  "2024-03-01",
		PeriodEnd:    "2024-03-31",
		BaseCurrency: "USD",
		Benchmark:    "SPY",
		DataPoints:   2,
		Exchanges:    []string{"binance", "bybit"},
		ExchangeDetails: []models.ExchangeDetail{
			{ExchangeKey: "binance", Exchange: "binance", KYCLevel: "verified"},
		},
		Metrics: models.ReportMetrics{
			Core: models.CoreMetrics{
				TotalReturnPct: 1.485,
				SharpeRatio:    2.1,
				MaxDrawdownPct: 1.0,
			},
		},
		DailyReturns: []models.DailyReturn{
			{Date: "2024-03-01", CumulativeReturnFactor: 1, NAV: 100000},
			{Date: "2024-03-02", NetReturnPct: 1.485, CumulativeReturnFactor: 1.01485, NAV: 101485},
		},
		MonthlyReturns: []models.MonthlyReturn{
			{Month: "2024-03", NetReturnPct: 1.485, AUM: 101485},
		},
	}
}
