// Package signing produces and verifies tamper-evident signed reports. The
// signable payload is hashed over a canonical serialization; the signature
// covers the hex hash string, so display parameters never influence
// verification.
package signing

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/report-enclave/internal/config"
	"github.com/report-enclave/internal/models"
	"github.com/report-enclave/internal/types"
)

// Signer holds the process-lifetime ephemeral P-256 key pair. The private
// key never leaves the struct; the exported public key is DER, base64.
// Construct once at startup and share across requests - the key material is
// read-only and safe for concurrent use.
type Signer struct {
	privateKey     *ecdsa.PrivateKey
	publicKeyB64   string
	enclaveVersion string
	attestationID  string
	measurement    string
}

// NewSigner generates a fresh ephemeral key pair for this process.
func NewSigner(cfg config.SigningConfig) (*Signer, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key pair: %w", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to export public key: %w", err)
	}

	return &Signer{
		privateKey:     privateKey,
		publicKeyB64:   base64.StdEncoding.EncodeToString(der),
		enclaveVersion: cfg.EnclaveVersion,
		attestationID:  cfg.AttestationID,
		measurement:    cfg.Measurement,
	}, nil
}

// PublicKey returns the base64-encoded DER public key.
func (s *Signer) PublicKey() string {
	return s.publicKeyB64
}

// Sign hashes the financial data canonically and signs the hex hash string.
// Display parameters are attached to the result but excluded from both the
// hash and the signature; signing the same financial data twice yields the
// same hash, though ECDSA signatures differ bitwise between calls.
func (s *Signer) Sign(financialData models.SignedFinancialData, displayParams models.DisplayParameters) (*models.SignedReport, error) {
	hash, err := HashFinancialData(financialData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash financial data: %w", err)
	}

	digest := sha256.Sum256([]byte(hash))
	signature, err := ecdsa.SignASN1(rand.Reader, s.privateKey, digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign report hash: %w", err)
	}

	return &models.SignedReport{
		FinancialData:      financialData,
		DisplayParams:      displayParams,
		Signature:          base64.StdEncoding.EncodeToString(signature),
		PublicKey:          s.publicKeyB64,
		SignatureAlgorithm: types.SignatureECDSAP256,
		ReportHash:         hash,
		EnclaveVersion:     s.enclaveVersion,
		AttestationID:      s.attestationID,
		Measurement:        s.measurement,
	}, nil
}

// VerificationResult is the structured outcome of a verification. Failures
// are never errors; Error carries the reason when Valid is false.
type VerificationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// VerifySignature verifies an ECDSA P-256 signature over the given hash
// string using a base64 DER public key.
func VerifySignature(hash, signature, publicKeyB64 string) VerificationResult {
	der, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return VerificationResult{Valid: false, Error: types.VerifyMalformedPublicKey}
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return VerificationResult{Valid: false, Error: types.VerifyMalformedPublicKey}
	}

	publicKey, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return VerificationResult{Valid: false, Error: types.VerifyMalformedPublicKey}
	}

	rawSignature, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return VerificationResult{Valid: false, Error: types.VerifyInvalidSignature}
	}

	digest := sha256.Sum256([]byte(hash))
	if !ecdsa.VerifyASN1(publicKey, digest[:], rawSignature) {
		return VerificationResult{Valid: false, Error: types.VerifyInvalidSignature}
	}

	return VerificationResult{Valid: true}
}

// VerifySignedReport recomputes the canonical hash of the report's financial
// data and verifies the signature over it. A hash mismatch fails without
// attempting signature verification: the financial data was tampered with.
// Display parameter changes never affect the outcome.
func VerifySignedReport(report *models.SignedReport) VerificationResult {
	hash, err := HashFinancialData(report.FinancialData)
	if err != nil {
		return VerificationResult{Valid: false, Error: types.VerifyHashMismatch}
	}

	if hash != report.ReportHash {
		return VerificationResult{Valid: false, Error: types.VerifyHashMismatch}
	}

	return VerifySignature(report.ReportHash, report.Signature, report.PublicKey)
}
