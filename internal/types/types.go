// Package types defines shared domain types for the report enclave service.
package types

// BenchmarkSymbol identifies an external benchmark series
type BenchmarkSymbol string

const (
	// BenchmarkSPY is the S&P 500 ETF benchmark
	BenchmarkSPY BenchmarkSymbol = "SPY"
	// BenchmarkBTCUSD is the Bitcoin spot benchmark
	BenchmarkBTCUSD BenchmarkSymbol = "BTC-USD"
)

// IsValid reports whether the symbol is a supported benchmark
func (b BenchmarkSymbol) IsValid() bool {
	return b == BenchmarkSPY || b == BenchmarkBTCUSD
}

// SignatureAlgorithm identifies the scheme used to sign report hashes
type SignatureAlgorithm string

const (
	// SignatureECDSAP256 is ECDSA over NIST P-256 with SHA-256
	SignatureECDSAP256 SignatureAlgorithm = "ECDSA-P256-SHA256"
)

// UserTier represents an API subscription tier
type UserTier string

const (
	TierFree    UserTier = "free"
	TierBasic   UserTier = "basic"
	TierPremium UserTier = "premium"
)

// ServiceError represents a structured service-level error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Service error codes. Non-fatal codes never fail a report request on their
// own; they degrade the result and are logged.
const (
	// ErrCodeNoSnapshotData - zero snapshots in the requested range
	ErrCodeNoSnapshotData = "NO_SNAPSHOT_DATA"
	// ErrCodeInsufficientData - fewer than two daily observations
	ErrCodeInsufficientData = "INSUFFICIENT_DATA"
	// ErrCodeBenchmarkUnavailable - benchmark fetch failed (non-fatal)
	ErrCodeBenchmarkUnavailable = "BENCHMARK_UNAVAILABLE"
	// ErrCodePersistenceFailure - report cache write failed (non-fatal)
	ErrCodePersistenceFailure = "PERSISTENCE_FAILURE"
	// ErrCodeUpstreamFetchFailure - snapshot or registry fetch failed
	ErrCodeUpstreamFetchFailure = "UPSTREAM_FETCH_FAILURE"
	// ErrCodeInvalidRequest - malformed report request
	ErrCodeInvalidRequest = "INVALID_REQUEST"
)

// Verification failure reasons. These are returned as structured results,
// never as errors.
const (
	VerifyHashMismatch       = "hash mismatch"
	VerifyInvalidSignature   = "invalid signature"
	VerifyMalformedPublicKey = "malformed public key"
)
