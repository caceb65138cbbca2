package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/report-enclave/internal/logging"
	"github.com/report-enclave/internal/models"
	"github.com/report-enclave/internal/service"
	"github.com/report-enclave/internal/signing"
	"github.com/report-enclave/internal/types"
)

type mockReportService struct {
	generateResp *service.ReportResponse
	generateErr  error
	lastRequest  *service.ReportRequest
	verifyResult signing.VerificationResult
}

func (m *mockReportService) GenerateSignedReport(ctx context.Context, req *service.ReportRequest) (*service.ReportResponse, error) {
	m.lastRequest = req
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return m.generateResp, nil
}

func (m *mockReportService) VerifyReport(report *models.SignedReport) signing.VerificationResult {
	return m.verifyResult
}

func (m *mockReportService) VerifyDetachedSignature(hash, signature, publicKey string) signing.VerificationResult {
	return m.verifyResult
}

func newTestServer(svc ReportServiceInterface) *Server {
	return NewServer(&ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		IdleTimeout:    5 * time.Second,
		FreeTierRPS:    100,
		BasicTierRPS:   100,
		PremiumTierRPS: 100,
	}, svc, nil, nil, logging.New("error", "json"))
}

func doRequest(t *testing.T, server *Server, method, path string, headers map[string]string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestGenerateReportRequiresUserHeader(t *testing.T) {
	server := newTestServer(&mockReportService{})

	rec := doRequest(t, server, "POST", "/api/reports", nil, map[string]string{})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeUnauthorized, resp.Error.Code)
}

func TestGenerateReportSuccess(t *testing.T) {
	svc := &mockReportService{generateResp: &service.ReportResponse{
		Success: true,
		SignedReport: &models.SignedReport{
			ReportHash: "abc123",
			FinancialData: models.SignedFinancialData{
				ReportID: "TR-LX2M3K-9A4F21BC",
				UserUID:  "user-1",
			},
		},
	}}
	server := newTestServer(svc)

	rec := doRequest(t, server, "POST", "/api/reports",
		map[string]string{"X-User-ID": "user-1"},
		map[string]interface{}{
			"startDate": "2024-03-01",
			"endDate":   "2024-03-31",
			"benchmark": "SPY",
		})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastRequest)
	assert.Equal(t, "user-1", svc.lastRequest.UserUID)
	assert.Equal(t, "SPY", svc.lastRequest.Benchmark)

	var resp service.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "abc123", resp.SignedReport.ReportHash)
}

func TestGenerateReportAcceptsAllRequestFields(t *testing.T) {
	// Every documented request field must decode; DisallowUnknownFields
	// turns a misnamed tag into a 400.
	svc := &mockReportService{generateResp: &service.ReportResponse{
		Success:      true,
		SignedReport: &models.SignedReport{},
	}}
	server := newTestServer(svc)

	rec := doRequest(t, server, "POST", "/api/reports",
		map[string]string{"X-User-ID": "user-1"},
		map[string]interface{}{
			"startDate":          "2024-03-01",
			"endDate":            "2024-03-31",
			"benchmark":          "SPY",
			"includeRiskMetrics": true,
			"includeDrawdown":    true,
			"baseCurrency":       "EUR",
			"displayParams":      map[string]interface{}{"reportName": "Q1"},
		})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastRequest)
	assert.True(t, svc.lastRequest.IncludeRisk)
	assert.True(t, svc.lastRequest.IncludeDrawdown)
	assert.Equal(t, "EUR", svc.lastRequest.BaseCurrency)
	assert.Equal(t, "Q1", svc.lastRequest.DisplayParams.ReportName)
}

func TestGenerateReportServiceErrorMapped(t *testing.T) {
	cases := []struct {
		code       string
		wantStatus int
	}{
		{types.ErrCodeInvalidRequest, http.StatusBadRequest},
		{types.ErrCodeNoSnapshotData, http.StatusUnprocessableEntity},
		{types.ErrCodeInsufficientData, http.StatusUnprocessableEntity},
		{types.ErrCodeUpstreamFetchFailure, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			server := newTestServer(&mockReportService{
				generateErr: &types.ServiceError{Code: tc.code, Message: "boom"},
			})

			rec := doRequest(t, server, "POST", "/api/reports",
				map[string]string{"X-User-ID": "user-1"}, map[string]interface{}{})

			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Error.Code)
		})
	}
}

func TestGenerateReportMalformedBody(t *testing.T) {
	server := newTestServer(&mockReportService{})

	req := httptest.NewRequest("POST", "/api/reports", bytes.NewBufferString(`{"startDate": `))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyReport(t *testing.T) {
	svc := &mockReportService{verifyResult: signing.VerificationResult{Valid: true}}
	server := newTestServer(svc)

	rec := doRequest(t, server, "POST", "/api/reports/verify", nil, map[string]interface{}{
		"signedReport": map[string]interface{}{
			"financialData": map[string]interface{}{"reportId": "TR-X-00000000"},
			"displayParams": map[string]interface{}{},
			"signature":     "c2ln",
			"publicKey":     "cHVi",
			"reportHash":    "abc",
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var result signing.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Valid)
}

func TestVerifyReportMissingBody(t *testing.T) {
	server := newTestServer(&mockReportService{})

	rec := doRequest(t, server, "POST", "/api/reports/verify", nil, map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifySignature(t *testing.T) {
	svc := &mockReportService{verifyResult: signing.VerificationResult{
		Valid: false,
		Error: types.VerifyInvalidSignature,
	}}
	server := newTestServer(svc)

	rec := doRequest(t, server, "POST", "/api/signatures/verify", nil, map[string]interface{}{
		"reportHash": "abc",
		"signature":  "c2ln",
		"publicKey":  "cHVi",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var result signing.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.Equal(t, types.VerifyInvalidSignature, result.Error)
}

func TestVerifySignatureMissingFields(t *testing.T) {
	server := newTestServer(&mockReportService{})

	rec := doRequest(t, server, "POST", "/api/signatures/verify", nil, map[string]interface{}{
		"reportHash": "abc",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&mockReportService{})

	rec := doRequest(t, server, "GET", "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status["status"])
	assert.Equal(t, "report-enclave", status["service"])
}

func TestRateLimitExceeded(t *testing.T) {
	server := NewServer(&ServerConfig{
		Host: "127.0.0.1", Port: "0",
		FreeTierRPS: 1, BasicTierRPS: 1, PremiumTierRPS: 1,
	}, &mockReportService{}, nil, nil, logging.New("error", "json"))

	// Burst allows 10 requests; the 11th in the same instant is rejected.
	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		last = doRequest(t, server, "GET", "/health", map[string]string{"X-User-ID": "user-1"}, nil)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
}
