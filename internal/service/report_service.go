// Package service implements the report generation pipeline: period
// resolution, snapshot and benchmark fetch, series construction, metrics,
// assembly, signing, and the period dedup gate.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/report-enclave/internal/logging"
	"github.com/report-enclave/internal/metrics"
	"github.com/report-enclave/internal/models"
	"github.com/report-enclave/internal/series"
	"github.com/report-enclave/internal/signing"
	"github.com/report-enclave/internal/types"
)

// SnapshotRepository interface for equity snapshot lookups
type SnapshotRepository interface {
	GetByUserAndDateRange(ctx context.Context, userUID string, from, to time.Time) ([]*models.EquitySnapshot, error)
	GetEarliestTimestamp(ctx context.Context, userUID string) (*time.Time, error)
}

// ConnectionRepository interface for exchange connection registry lookups
type ConnectionRepository interface {
	GetByUser(ctx context.Context, userUID string) ([]*models.ExchangeConnection, error)
}

// ReportRepository interface for signed report persistence
type ReportRepository interface {
	FindByPeriod(ctx context.Context, userUID, periodStart, periodEnd, benchmark string) (*models.SignedReport, error)
	Save(ctx context.Context, report *models.SignedReport) error
	UpdateDisplayParams(ctx context.Context, userUID, periodStart, periodEnd, benchmark string, params models.DisplayParameters) error
}

// BenchmarkClient interface for fetching benchmark daily returns
type BenchmarkClient interface {
	FetchDailyReturns(ctx context.Context, symbol types.BenchmarkSymbol, startDate, endDate time.Time) (map[string]float64, error)
}

// ReportSigner interface for producing signed reports
type ReportSigner interface {
	Sign(financialData models.SignedFinancialData, displayParams models.DisplayParameters) (*models.SignedReport, error)
}

// ReportCache interface for the Redis fast path in front of the report
// store and for benchmark return series. Implemented by
// storage.CacheService.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	GenerateReportKey(userUID, startDate, endDate, benchmark string) string
	GenerateBenchmarkKey(symbol types.BenchmarkSymbol, startDate, endDate string) string
}

// ReportRequest is a request to generate a signed performance report.
// StartDate and EndDate are YYYY-MM-DD and optional: an absent start defaults
// to the user's first snapshot, an absent end to today. The dedup gate only
// applies when both are explicit.
type ReportRequest struct {
	UserUID         string                   `json:"-"`
	StartDate       string                   `json:"startDate,omitempty"`
	EndDate         string                   `json:"endDate,omitempty"`
	Benchmark       string                   `json:"benchmark,omitempty"`
	IncludeRisk     bool                     `json:"includeRiskMetrics,omitempty"`
	IncludeDrawdown bool                     `json:"includeDrawdown,omitempty"`
	BaseCurrency    string                   `json:"baseCurrency,omitempty"`
	DisplayParams   models.DisplayParameters `json:"displayParams"`
}

// ReportResponse wraps a generated or replayed signed report.
type ReportResponse struct {
	Success      bool                 `json:"success"`
	SignedReport *models.SignedReport `json:"signedReport,omitempty"`
	Cached       bool                 `json:"cached"`
}

// ReportService orchestrates report generation
type ReportService struct {
	snapshotRepo    SnapshotRepository
	connectionRepo  ConnectionRepository
	reportRepo      ReportRepository
	benchmarkClient BenchmarkClient
	signer          ReportSigner
	engine          *metrics.Engine
	cache           ReportCache
}

// NewReportService creates a new report service
func NewReportService(
	snapshotRepo SnapshotRepository,
	connectionRepo ConnectionRepository,
	reportRepo ReportRepository,
	benchmarkClient BenchmarkClient,
	signer ReportSigner,
	engine *metrics.Engine,
) *ReportService {
	return &ReportService{
		snapshotRepo:    snapshotRepo,
		connectionRepo:  connectionRepo,
		reportRepo:      reportRepo,
		benchmarkClient: benchmarkClient,
		signer:          signer,
		engine:          engine,
	}
}

// WithCache attaches a cache used as a fast path in front of the report
// store. Without it every explicit-period request hits Postgres.
func (s *ReportService) WithCache(cache ReportCache) *ReportService {
	s.cache = cache
	return s
}

// GenerateSignedReport runs the full pipeline for one request. Benchmark
// fetch failures degrade the report instead of failing it; persistence
// failures are logged and swallowed because the signed report in hand is
// already complete and verifiable.
func (s *ReportService) GenerateSignedReport(ctx context.Context, req *ReportRequest) (*ReportResponse, error) {
	logger := logging.FromContext(ctx).WithField("userUid", req.UserUID)

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if req.BaseCurrency == "" {
		req.BaseCurrency = "USD"
	}

	explicitPeriod := req.StartDate != "" && req.EndDate != ""

	periodStart, periodEnd, err := s.resolvePeriod(ctx, req)
	if err != nil {
		return nil, err
	}
	startStr := periodStart.Format("2006-01-02")
	endStr := periodEnd.Format("2006-01-02")

	// Dedup gate: an explicit period is an immutable key. Replay the stored
	// report rather than re-signing, with the display parameters from this
	// request. Redis is tried first, then the report store.
	if explicitPeriod {
		if report := s.cachedReport(ctx, req, startStr, endStr, logger); report != nil {
			report.DisplayParams = req.DisplayParams
			return &ReportResponse{Success: true, SignedReport: report, Cached: true}, nil
		}

		stored, err := s.reportRepo.FindByPeriod(ctx, req.UserUID, startStr, endStr, req.Benchmark)
		if err != nil {
			logger.WithError(err).Warn("Report dedup lookup failed, regenerating")
		} else if stored != nil {
			if err := s.reportRepo.UpdateDisplayParams(ctx, req.UserUID, startStr, endStr, req.Benchmark, req.DisplayParams); err != nil {
				logger.WithError(err).Warn("Failed to update display params on stored report")
			}
			stored.DisplayParams = req.DisplayParams
			s.storeInCache(ctx, req, startStr, endStr, stored, logger)
			return &ReportResponse{Success: true, SignedReport: stored, Cached: true}, nil
		}
	}

	snapshots, connections, benchReturns, fetchErr := s.fetchInputs(ctx, req, periodStart, periodEnd, logger)
	if fetchErr != nil {
		return nil, &types.ServiceError{
			Code:    types.ErrCodeUpstreamFetchFailure,
			Message: "failed to fetch snapshots",
		}
	}
	if len(snapshots) == 0 {
		return nil, &types.ServiceError{
			Code:    types.ErrCodeNoSnapshotData,
			Message: "no snapshots found in the requested period",
			Details: map[string]interface{}{"startDate": startStr, "endDate": endStr},
		}
	}

	snapshots = filterExcluded(snapshots, connections)

	daily := series.BuildDailySeries(snapshots)
	if len(daily) < 2 {
		return nil, &types.ServiceError{
			Code:    types.ErrCodeInsufficientData,
			Message: "at least two distinct snapshot days are required to compute returns",
			Details: map[string]interface{}{"dataPoints": len(daily)},
		}
	}

	if benchReturns != nil {
		series.ApplyBenchmark(daily, benchReturns)
	}
	monthly := series.AggregateMonthly(daily)

	reportMetrics := models.ReportMetrics{Core: s.engine.Core(daily)}
	if req.IncludeRisk {
		risk := s.engine.Risk(daily)
		reportMetrics.Risk = &risk
	}
	if req.IncludeDrawdown {
		drawdown := s.engine.Drawdown(daily)
		reportMetrics.Drawdown = &drawdown
	}
	if benchReturns != nil {
		bench := s.engine.Benchmark(daily, benchReturns, req.Benchmark)
		reportMetrics.Benchmark = &bench
	}

	financialData := s.assembleFinancialData(req, startStr, endStr, snapshots, connections, reportMetrics, daily, monthly)

	signedReport, err := s.signer.Sign(financialData, req.DisplayParams)
	if err != nil {
		return nil, fmt.Errorf("failed to sign report: %w", err)
	}

	if explicitPeriod {
		if err := s.reportRepo.Save(ctx, signedReport); err != nil {
			logger.WithError(err).WithField("code", types.ErrCodePersistenceFailure).
				Warn("Failed to persist signed report")
		}
		s.storeInCache(ctx, req, startStr, endStr, signedReport, logger)
	}

	logger.WithFields(map[string]interface{}{
		"reportId":   financialData.ReportID,
		"dataPoints": financialData.DataPoints,
		"benchmark":  req.Benchmark,
	}).Info("Signed report generated")

	return &ReportResponse{Success: true, SignedReport: signedReport, Cached: false}, nil
}

// cachedReport returns the cached signed report for an explicit period, or
// nil on a miss or a cache error.
func (s *ReportService) cachedReport(ctx context.Context, req *ReportRequest, startStr, endStr string, logger *logging.Logger) *models.SignedReport {
	if s.cache == nil {
		return nil
	}
	key := s.cache.GenerateReportKey(req.UserUID, startStr, endStr, req.Benchmark)
	var report models.SignedReport
	found, err := s.cache.Get(ctx, key, &report)
	if err != nil {
		logger.WithError(err).Warn("Report cache lookup failed")
		return nil
	}
	if !found {
		return nil
	}
	return &report
}

// storeInCache caches a signed report for its explicit period, best effort.
func (s *ReportService) storeInCache(ctx context.Context, req *ReportRequest, startStr, endStr string, report *models.SignedReport, logger *logging.Logger) {
	if s.cache == nil {
		return
	}
	key := s.cache.GenerateReportKey(req.UserUID, startStr, endStr, req.Benchmark)
	if err := s.cache.Set(ctx, key, report); err != nil {
		logger.WithError(err).Warn("Failed to cache signed report")
	}
}

// VerifyReport recomputes the report hash and checks the signature.
func (s *ReportService) VerifyReport(report *models.SignedReport) signing.VerificationResult {
	return signing.VerifySignedReport(report)
}

// VerifyDetachedSignature checks a signature over a bare report hash.
func (s *ReportService) VerifyDetachedSignature(hash, signature, publicKey string) signing.VerificationResult {
	return signing.VerifySignature(hash, signature, publicKey)
}

func (s *ReportService) validateRequest(req *ReportRequest) error {
	if req.UserUID == "" {
		return &types.ServiceError{
			Code:    types.ErrCodeInvalidRequest,
			Message: "user identifier is required",
		}
	}

	for name, value := range map[string]string{"startDate": req.StartDate, "endDate": req.EndDate} {
		if value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return &types.ServiceError{
				Code:    types.ErrCodeInvalidRequest,
				Message: fmt.Sprintf("%s must be YYYY-MM-DD", name),
				Details: map[string]interface{}{name: value},
			}
		}
	}

	if req.StartDate != "" && req.EndDate != "" && req.StartDate > req.EndDate {
		return &types.ServiceError{
			Code:    types.ErrCodeInvalidRequest,
			Message: "startDate must not be after endDate",
		}
	}

	if req.Benchmark != "" && !types.BenchmarkSymbol(req.Benchmark).IsValid() {
		return &types.ServiceError{
			Code:    types.ErrCodeInvalidRequest,
			Message: fmt.Sprintf("unsupported benchmark: %s", req.Benchmark),
		}
	}

	return nil
}

// resolvePeriod fills in absent period bounds: start defaults to the user's
// first snapshot, end to today (UTC).
func (s *ReportService) resolvePeriod(ctx context.Context, req *ReportRequest) (time.Time, time.Time, error) {
	var start, end time.Time

	if req.StartDate != "" {
		start, _ = time.Parse("2006-01-02", req.StartDate)
	} else {
		earliest, err := s.snapshotRepo.GetEarliestTimestamp(ctx, req.UserUID)
		if err != nil {
			return start, end, &types.ServiceError{
				Code:    types.ErrCodeUpstreamFetchFailure,
				Message: "failed to resolve report period start",
			}
		}
		if earliest == nil {
			return start, end, &types.ServiceError{
				Code:    types.ErrCodeNoSnapshotData,
				Message: "user has no snapshots",
			}
		}
		start = earliest.UTC().Truncate(24 * time.Hour)
	}

	if req.EndDate != "" {
		end, _ = time.Parse("2006-01-02", req.EndDate)
	} else {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}

	// Cover the whole last day.
	end = end.Add(24*time.Hour - time.Nanosecond)
	return start, end, nil
}

// fetchInputs loads snapshots, registry connections, and benchmark returns
// concurrently. Connection and benchmark failures are non-fatal: the report
// proceeds without registry metadata or benchmark overlay.
func (s *ReportService) fetchInputs(ctx context.Context, req *ReportRequest, periodStart, periodEnd time.Time, logger *logging.Logger) ([]*models.EquitySnapshot, []*models.ExchangeConnection, map[string]float64, error) {
	var (
		wg          sync.WaitGroup
		snapshots   []*models.EquitySnapshot
		connections []*models.ExchangeConnection
		bench       map[string]float64
		snapErr     error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		fetched, err := s.snapshotRepo.GetByUserAndDateRange(ctx, req.UserUID, periodStart, periodEnd)
		if err != nil {
			logger.WithError(err).WithField("code", types.ErrCodeUpstreamFetchFailure).
				Error("Failed to fetch snapshots")
			snapErr = err
			return
		}
		snapshots = fetched
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		fetched, err := s.connectionRepo.GetByUser(ctx, req.UserUID)
		if err != nil {
			logger.WithError(err).Warn("Failed to fetch exchange connections, report will omit registry metadata")
			return
		}
		connections = fetched
	}()

	if req.Benchmark != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			symbol := types.BenchmarkSymbol(req.Benchmark)

			// Benchmark series are user-independent, so a cached window is
			// shared across every report over the same period.
			var cacheKey string
			if s.cache != nil {
				cacheKey = s.cache.GenerateBenchmarkKey(symbol,
					periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"))
				var cached map[string]float64
				if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
					logger.WithError(err).Warn("Benchmark cache lookup failed")
				} else if found {
					bench = cached
					return
				}
			}

			fetched, err := s.benchmarkClient.FetchDailyReturns(ctx, symbol, periodStart, periodEnd)
			if err != nil {
				logger.WithError(err).WithField("code", types.ErrCodeBenchmarkUnavailable).
					Warn("Benchmark fetch failed, report will omit benchmark metrics")
				return
			}
			bench = fetched

			if s.cache != nil {
				if err := s.cache.Set(ctx, cacheKey, fetched); err != nil {
					logger.WithError(err).Warn("Failed to cache benchmark returns")
				}
			}
		}()
	}

	wg.Wait()
	return snapshots, connections, bench, snapErr
}

// filterExcluded drops snapshots from connections the user has excluded from
// reporting.
func filterExcluded(snapshots []*models.EquitySnapshot, connections []*models.ExchangeConnection) []*models.EquitySnapshot {
	excluded := make(map[string]bool)
	for _, conn := range connections {
		if conn.Excluded {
			excluded[conn.ExchangeKey()] = true
		}
	}
	if len(excluded) == 0 {
		return snapshots
	}

	kept := make([]*models.EquitySnapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if !excluded[snap.ExchangeKey()] {
			kept = append(kept, snap)
		}
	}
	return kept
}

func (s *ReportService) assembleFinancialData(
	req *ReportRequest,
	startStr, endStr string,
	snapshots []*models.EquitySnapshot,
	connections []*models.ExchangeConnection,
	reportMetrics models.ReportMetrics,
	daily []models.DailyReturn,
	monthly []models.MonthlyReturn,
) models.SignedFinancialData {
	exchangeKeys := series.ExchangeKeys(snapshots)

	details := make([]models.ExchangeDetail, 0, len(exchangeKeys))
	byKey := make(map[string]*models.ExchangeConnection, len(connections))
	for _, conn := range connections {
		byKey[conn.ExchangeKey()] = conn
	}
	for _, key := range exchangeKeys {
		detail := models.ExchangeDetail{ExchangeKey: key, Exchange: key, KYCLevel: "unknown"}
		if conn, ok := byKey[key]; ok {
			detail.Exchange = conn.Exchange
			detail.Label = conn.Label
			detail.KYCLevel = conn.KYCLevel
			detail.PaperTrading = conn.PaperTrading
		}
		details = append(details, detail)
	}

	return models.SignedFinancialData{
		ReportID:        generateReportID(),
		UserUID:         req.UserUID,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		PeriodStart:     startStr,
		PeriodEnd:       endStr,
		BaseCurrency:    req.BaseCurrency,
		Benchmark:       req.Benchmark,
		DataPoints:      len(daily),
		Exchanges:       exchangeKeys,
		ExchangeDetails: details,
		Metrics:         reportMetrics,
		DailyReturns:    daily,
		MonthlyReturns:  monthly,
	}
}

// generateReportID produces IDs of the form TR-<base36 millis>-<8 hex>.
func generateReportID() string {
	millis := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("TR-%s-%08X", millis, time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("TR-%s-%s", millis, strings.ToUpper(hex.EncodeToString(suffix)))
}
