package benchmark

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/report-enclave/internal/config"
	"github.com/report-enclave/internal/retry"
	"github.com/report-enclave/internal/types"
)

func newTestClient(serverURL string) *Client {
	client := NewClient(config.BenchmarkConfig{
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	})
	// Keep test retries fast.
	client.retryConfig = &retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
	return client
}

func pricesHandler(t *testing.T, points []pricePoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/prices/daily", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("symbol"))
		assert.NotEmpty(t, r.URL.Query().Get("startDate"))
		assert.NotEmpty(t, r.URL.Query().Get("endDate"))

		resp := priceResponse{Success: true}
		resp.Data.Data = points
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func TestFetchDailyReturnsConvertsPrices(t *testing.T) {
	server := httptest.NewServer(pricesHandler(t, []pricePoint{
		{Date: "2024-03-01", AdjustedClose: 100},
		{Date: "2024-03-02", AdjustedClose: 102},
		{Date: "2024-03-03", AdjustedClose: 96.9},
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	returns, err := client.FetchDailyReturns(context.Background(), types.BenchmarkSPY,
		mustDate(t, "2024-03-01"), mustDate(t, "2024-03-03"))
	require.NoError(t, err)

	// First price point has no prior close.
	require.Len(t, returns, 2)
	assert.InDelta(t, 2.0, returns["2024-03-02"], 1e-9)
	assert.InDelta(t, -5.0, returns["2024-03-03"], 1e-9)
	_, ok := returns["2024-03-01"]
	assert.False(t, ok)
}

func TestFetchDailyReturnsRetriesOnServerError(t *testing.T) {
	var calls int32
	handler := pricesHandler(t, []pricePoint{
		{Date: "2024-03-01", AdjustedClose: 100},
		{Date: "2024-03-02", AdjustedClose: 101},
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		handler(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	returns, err := client.FetchDailyReturns(context.Background(), types.BenchmarkBTCUSD,
		mustDate(t, "2024-03-01"), mustDate(t, "2024-03-02"))
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.InDelta(t, 1.0, returns["2024-03-02"], 1e-9)
}

func TestFetchDailyReturnsExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchDailyReturns(context.Background(), types.BenchmarkSPY,
		mustDate(t, "2024-03-01"), mustDate(t, "2024-03-02"))

	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "status 502")
}

func TestFetchDailyReturnsServiceFailureEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(priceResponse{Success: false, Error: "symbol not found"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchDailyReturns(context.Background(), types.BenchmarkSPY,
		mustDate(t, "2024-03-01"), mustDate(t, "2024-03-02"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol not found")
}

func TestFetchDailyReturnsRejectsUnknownSymbol(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	_, err := client.FetchDailyReturns(context.Background(), types.BenchmarkSymbol("DOGE"),
		mustDate(t, "2024-03-01"), mustDate(t, "2024-03-02"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported benchmark symbol")
}

func TestPricesToReturnsSkipsNonPositivePrices(t *testing.T) {
	returns := pricesToReturns([]pricePoint{
		{Date: "2024-03-01", AdjustedClose: 100},
		{Date: "2024-03-02", AdjustedClose: 0},
		{Date: "2024-03-03", AdjustedClose: 50},
	})

	// 03-02 gets a return from 100 -> 0, but 03-03 has no valid prior close.
	assert.InDelta(t, -100.0, returns["2024-03-02"], 1e-9)
	_, ok := returns["2024-03-03"]
	assert.False(t, ok)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}
