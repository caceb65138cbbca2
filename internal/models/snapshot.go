package models

import "time"

// EquitySnapshot represents one per-exchange account snapshot produced by an
// upstream connector sync. Snapshots are immutable once written; many may
// exist per calendar day per exchange, and only the chronologically last one
// of each (date, exchange key) pair contributes to the daily series.
type EquitySnapshot struct {
	ID              int64     `json:"id" db:"id"`
	UserUID         string    `json:"userUid" db:"user_uid"`
	Exchange        string    `json:"exchange" db:"exchange"`
	Label           string    `json:"label,omitempty" db:"label"`
	Timestamp       time.Time `json:"timestamp" db:"snapshot_at"`
	TotalEquity     float64   `json:"totalEquity" db:"total_equity"`
	RealizedBalance float64   `json:"realizedBalance" db:"realized_balance"`
	UnrealizedPnL   float64   `json:"unrealizedPnl" db:"unrealized_pnl"`
	Deposits        float64   `json:"deposits" db:"deposits"`
	Withdrawals     float64   `json:"withdrawals" db:"withdrawals"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// ExchangeKey returns the aggregation key for this snapshot. Sub-accounts on
// the same exchange are distinguished by label.
func (s *EquitySnapshot) ExchangeKey() string {
	if s.Label != "" {
		return s.Exchange + "|" + s.Label
	}
	return s.Exchange
}

// Date returns the UTC calendar date of the snapshot in YYYY-MM-DD form.
func (s *EquitySnapshot) Date() string {
	return s.Timestamp.UTC().Format("2006-01-02")
}

// ExchangeConnection represents a user's registered exchange connection as
// held by the connection registry.
type ExchangeConnection struct {
	UserUID      string    `json:"userUid" db:"user_uid"`
	Exchange     string    `json:"exchange" db:"exchange"`
	Label        string    `json:"label,omitempty" db:"label"`
	KYCLevel     string    `json:"kycLevel" db:"kyc_level"`
	PaperTrading bool      `json:"paperTrading" db:"paper_trading"`
	Excluded     bool      `json:"excluded" db:"excluded"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ExchangeKey returns the aggregation key for this connection.
func (c *ExchangeConnection) ExchangeKey() string {
	if c.Label != "" {
		return c.Exchange + "|" + c.Label
	}
	return c.Exchange
}
