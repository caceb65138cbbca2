package models

import "github.com/report-enclave/internal/types"

// ExchangeDetail carries per-exchange registry metadata included in the
// signed payload.
type ExchangeDetail struct {
	ExchangeKey  string `json:"exchangeKey"`
	Exchange     string `json:"exchange"`
	Label        string `json:"label,omitempty"`
	KYCLevel     string `json:"kycLevel"`
	PaperTrading bool   `json:"paperTrading"`
}

// SignedFinancialData is the signable payload of a report: the immutable
// financial content, created once per (user, period, benchmark) and never
// mutated after signing. All temporal fields are ISO-8601 strings so the
// canonical serialization is stable across load/store round trips.
type SignedFinancialData struct {
	ReportID        string           `json:"reportId"`
	UserUID         string           `json:"userUid"`
	GeneratedAt     string           `json:"generatedAt"`
	PeriodStart     string           `json:"periodStart"`
	PeriodEnd       string           `json:"periodEnd"`
	BaseCurrency    string           `json:"baseCurrency"`
	Benchmark       string           `json:"benchmark,omitempty"`
	DataPoints      int              `json:"dataPoints"`
	Exchanges       []string         `json:"exchanges"`
	ExchangeDetails []ExchangeDetail `json:"exchangeDetails"`
	Metrics         ReportMetrics    `json:"metrics"`
	DailyReturns    []DailyReturn    `json:"dailyReturns"`
	MonthlyReturns  []MonthlyReturn  `json:"monthlyReturns"`
}

// DisplayParameters are presentation-only report metadata. They are never
// hashed or signed and may be replaced on every request.
type DisplayParameters struct {
	ReportName  string `json:"reportName,omitempty"`
	ManagerName string `json:"managerName,omitempty"`
	FirmName    string `json:"firmName,omitempty"`
	Strategy    string `json:"strategy,omitempty"`
	Disclaimers string `json:"disclaimers,omitempty"`
}

// SignedReport bundles the financial data with its cryptographic proof and
// the mutable display parameters. DisplayParams may be overwritten in place
// by later requests without invalidating Signature or ReportHash.
type SignedReport struct {
	FinancialData      SignedFinancialData      `json:"financialData"`
	DisplayParams      DisplayParameters        `json:"displayParams"`
	Signature          string                   `json:"signature"`
	PublicKey          string                   `json:"publicKey"`
	SignatureAlgorithm types.SignatureAlgorithm `json:"signatureAlgorithm"`
	ReportHash         string                   `json:"reportHash"`
	EnclaveVersion     string                   `json:"enclaveVersion"`
	AttestationID      string                   `json:"attestationId,omitempty"`
	Measurement        string                   `json:"measurement,omitempty"`
}
