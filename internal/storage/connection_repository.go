package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/report-enclave/internal/models"
)

// ConnectionRepository handles exchange connection registry lookups
type ConnectionRepository struct {
	pool *pgxpool.Pool
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(pool *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{
		pool: pool,
	}
}

// GetByUser retrieves all registered exchange connections for a user,
// including excluded and paper trading connections. Filtering is the
// service's concern.
func (r *ConnectionRepository) GetByUser(ctx context.Context, userUID string) ([]*models.ExchangeConnection, error) {
	query := `
		SELECT
			user_uid,
			exchange,
			label,
			kyc_level,
			paper_trading,
			excluded,
			created_at
		FROM exchange_connections
		WHERE user_uid = $1
		ORDER BY exchange ASC, label ASC
	`

	rows, err := r.pool.Query(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange connections: %w", err)
	}
	defer rows.Close()

	var connections []*models.ExchangeConnection

	for rows.Next() {
		var conn models.ExchangeConnection
		err := rows.Scan(
			&conn.UserUID,
			&conn.Exchange,
			&conn.Label,
			&conn.KYCLevel,
			&conn.PaperTrading,
			&conn.Excluded,
			&conn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection row: %w", err)
		}
		connections = append(connections, &conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connection rows: %w", err)
	}

	return connections, nil
}

// Upsert registers or updates an exchange connection
func (r *ConnectionRepository) Upsert(ctx context.Context, conn *models.ExchangeConnection) error {
	query := `
		INSERT INTO exchange_connections (
			user_uid,
			exchange,
			label,
			kyc_level,
			paper_trading,
			excluded
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_uid, exchange, label)
		DO UPDATE SET
			kyc_level = EXCLUDED.kyc_level,
			paper_trading = EXCLUDED.paper_trading,
			excluded = EXCLUDED.excluded
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		conn.UserUID,
		conn.Exchange,
		conn.Label,
		conn.KYCLevel,
		conn.PaperTrading,
		conn.Excluded,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange connection: %w", err)
	}

	return nil
}
