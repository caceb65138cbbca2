package api

import (
	"net/http"

	"github.com/report-enclave/internal/models"
	"github.com/report-enclave/internal/service"
)

// handleGenerateReport handles POST /api/reports. The caller is identified
// by the X-User-ID header set by the gateway; the body carries the period,
// benchmark, metric toggles, and display parameters.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	userUID := r.Header.Get("X-User-ID")
	if userUID == "" {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "X-User-ID header is required", nil)
		return
	}

	var req service.ReportRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body: "+err.Error(), nil)
		return
	}
	req.UserUID = userUID

	resp, err := s.reportService.GenerateSignedReport(r.Context(), &req)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, errorDetails(err))
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// verifyReportRequest is the body of POST /api/reports/verify.
type verifyReportRequest struct {
	SignedReport *models.SignedReport `json:"signedReport"`
}

// handleVerifyReport handles POST /api/reports/verify: recompute the hash of
// the submitted report's financial data and check its signature.
func (s *Server) handleVerifyReport(w http.ResponseWriter, r *http.Request) {
	var req verifyReportRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body: "+err.Error(), nil)
		return
	}
	if req.SignedReport == nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "signedReport is required", nil)
		return
	}

	result := s.reportService.VerifyReport(req.SignedReport)
	respondJSON(w, http.StatusOK, result)
}

// verifySignatureRequest is the body of POST /api/signatures/verify.
type verifySignatureRequest struct {
	ReportHash string `json:"reportHash"`
	Signature  string `json:"signature"`
	PublicKey  string `json:"publicKey"`
}

// handleVerifySignature handles POST /api/signatures/verify: check a
// detached signature over a report hash without the full report.
func (s *Server) handleVerifySignature(w http.ResponseWriter, r *http.Request) {
	var req verifySignatureRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body: "+err.Error(), nil)
		return
	}
	if req.ReportHash == "" || req.Signature == "" || req.PublicKey == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "reportHash, signature, and publicKey are required", nil)
		return
	}

	result := s.reportService.VerifyDetachedSignature(req.ReportHash, req.Signature, req.PublicKey)
	respondJSON(w, http.StatusOK, result)
}
