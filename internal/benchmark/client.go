// Package benchmark fetches reference index prices and converts them into
// daily return series keyed by date.
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/report-enclave/internal/circuitbreaker"
	"github.com/report-enclave/internal/config"
	"github.com/report-enclave/internal/retry"
	"github.com/report-enclave/internal/types"
)

// Client fetches adjusted close prices from the market data service.
// Requests retry with backoff and are wrapped in a circuit breaker so a dead
// upstream fails fast instead of stalling every report request.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig *retry.Config
	breaker     *circuitbreaker.CircuitBreaker
}

// NewClient creates a benchmark data client from configuration.
func NewClient(cfg config.BenchmarkConfig) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		retryConfig: retry.DefaultConfig(),
		breaker:     circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("benchmark")),
	}
}

// priceResponse is the market data service envelope.
type priceResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Data []pricePoint `json:"data"`
	} `json:"data"`
}

// pricePoint is a single adjusted close observation.
type pricePoint struct {
	Date          string  `json:"date"`
	AdjustedClose float64 `json:"adjustedClose"`
}

// FetchDailyReturns fetches adjusted closes for the symbol over [startDate,
// endDate] and converts them to day-over-day percentage returns keyed by
// date (YYYY-MM-DD). The first price point has no prior close, so the
// returned map covers one fewer day than the price series.
func (c *Client) FetchDailyReturns(ctx context.Context, symbol types.BenchmarkSymbol, startDate, endDate time.Time) (map[string]float64, error) {
	if !symbol.IsValid() {
		return nil, fmt.Errorf("unsupported benchmark symbol: %s", symbol)
	}

	// Fetch one extra day before the window so the first in-window day has
	// a prior close to compute a return from.
	fetchStart := startDate.AddDate(0, 0, -7)

	var points []pricePoint
	err := c.breaker.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func(ctx context.Context, attempt int) error {
			fetched, err := c.fetchPrices(ctx, symbol, fetchStart, endDate)
			if err != nil {
				return err
			}
			points = fetched
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return pricesToReturns(points), nil
}

// fetchPrices performs a single request against the market data service.
func (c *Client) fetchPrices(ctx context.Context, symbol types.BenchmarkSymbol, startDate, endDate time.Time) ([]pricePoint, error) {
	params := url.Values{}
	params.Set("symbol", string(symbol))
	params.Set("startDate", startDate.UTC().Format("2006-01-02"))
	params.Set("endDate", endDate.UTC().Format("2006-01-02"))
	reqURL := fmt.Sprintf("%s/api/prices/daily?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("benchmark request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("benchmark service returned status %d", resp.StatusCode)
	}

	var parsed priceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("benchmark service error: %s", parsed.Error)
	}

	return parsed.Data.Data, nil
}

// pricesToReturns converts a chronologically ordered price series into
// percentage returns keyed by date. Non-positive prices break the chain:
// the day after one gets no return entry.
func pricesToReturns(points []pricePoint) map[string]float64 {
	returns := make(map[string]float64, len(points))
	for i := 1; i < len(points); i++ {
		prev := points[i-1].AdjustedClose
		if prev <= 0 {
			continue
		}
		returns[points[i].Date] = (points[i].AdjustedClose - prev) / prev * 100
	}
	return returns
}
