package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/report-enclave/internal/models"
	"github.com/report-enclave/internal/types"
)

// ReportRepository persists signed reports keyed by (user, period,
// benchmark). The financial data of a stored report is immutable; only the
// display parameters may be replaced.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{
		pool: pool,
	}
}

// FindByPeriod retrieves the stored signed report for an exact (user,
// periodStart, periodEnd, benchmark) key, or nil when none exists. Dates are
// YYYY-MM-DD strings; benchmark is "" when the report has none.
func (r *ReportRepository) FindByPeriod(ctx context.Context, userUID, periodStart, periodEnd, benchmark string) (*models.SignedReport, error) {
	query := `
		SELECT
			financial_data,
			display_params,
			signature,
			public_key,
			signature_algorithm,
			report_hash,
			enclave_version,
			attestation_id,
			measurement
		FROM signed_reports
		WHERE user_uid = $1
			AND period_start = $2
			AND period_end = $3
			AND benchmark = $4
	`

	var (
		financialDataJSON []byte
		displayParamsJSON []byte
		report            models.SignedReport
		algorithm         string
	)

	err := r.pool.QueryRow(ctx, query, userUID, periodStart, periodEnd, benchmark).Scan(
		&financialDataJSON,
		&displayParamsJSON,
		&report.Signature,
		&report.PublicKey,
		&algorithm,
		&report.ReportHash,
		&report.EnclaveVersion,
		&report.AttestationID,
		&report.Measurement,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query signed report: %w", err)
	}

	if err := json.Unmarshal(financialDataJSON, &report.FinancialData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal financial data: %w", err)
	}
	if err := json.Unmarshal(displayParamsJSON, &report.DisplayParams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal display params: %w", err)
	}
	report.SignatureAlgorithm = types.SignatureAlgorithm(algorithm)

	return &report, nil
}

// Save stores a signed report. A concurrent insert for the same period key
// wins silently: ON CONFLICT DO NOTHING keeps the first stored report
// authoritative, and the caller's report remains valid regardless.
func (r *ReportRepository) Save(ctx context.Context, report *models.SignedReport) error {
	financialDataJSON, err := json.Marshal(report.FinancialData)
	if err != nil {
		return fmt.Errorf("failed to marshal financial data: %w", err)
	}

	displayParamsJSON, err := json.Marshal(report.DisplayParams)
	if err != nil {
		return fmt.Errorf("failed to marshal display params: %w", err)
	}

	query := `
		INSERT INTO signed_reports (
			id,
			user_uid,
			period_start,
			period_end,
			benchmark,
			report_id,
			financial_data,
			display_params,
			signature,
			public_key,
			signature_algorithm,
			report_hash,
			enclave_version,
			attestation_id,
			measurement
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (user_uid, period_start, period_end, benchmark)
		DO NOTHING
	`

	_, err = r.pool.Exec(
		ctx,
		query,
		uuid.New(),
		report.FinancialData.UserUID,
		report.FinancialData.PeriodStart,
		report.FinancialData.PeriodEnd,
		report.FinancialData.Benchmark,
		report.FinancialData.ReportID,
		financialDataJSON,
		displayParamsJSON,
		report.Signature,
		report.PublicKey,
		string(report.SignatureAlgorithm),
		report.ReportHash,
		report.EnclaveVersion,
		report.AttestationID,
		report.Measurement,
	)
	if err != nil {
		return fmt.Errorf("failed to insert signed report: %w", err)
	}

	return nil
}

// UpdateDisplayParams replaces the display parameters of a stored report.
// The financial data, hash, and signature are untouched.
func (r *ReportRepository) UpdateDisplayParams(ctx context.Context, userUID, periodStart, periodEnd, benchmark string, params models.DisplayParameters) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal display params: %w", err)
	}

	query := `
		UPDATE signed_reports
		SET display_params = $5
		WHERE user_uid = $1
			AND period_start = $2
			AND period_end = $3
			AND benchmark = $4
	`

	_, err = r.pool.Exec(ctx, query, userUID, periodStart, periodEnd, benchmark, paramsJSON)
	if err != nil {
		return fmt.Errorf("failed to update display params: %w", err)
	}

	return nil
}

// CountByUser returns the number of stored reports for a user
func (r *ReportRepository) CountByUser(ctx context.Context, userUID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM signed_reports WHERE user_uid = $1`, userUID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count signed reports: %w", err)
	}
	return count, nil
}
