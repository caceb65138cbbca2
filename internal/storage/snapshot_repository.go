package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/report-enclave/internal/models"
)

// SnapshotRepository handles equity snapshot storage operations
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{
		pool: pool,
	}
}

// Create stores a new equity snapshot. Snapshots are append-only; connector
// syncs never update rows in place.
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *models.EquitySnapshot) error {
	query := `
		INSERT INTO equity_snapshots (
			user_uid,
			exchange,
			label,
			snapshot_at,
			total_equity,
			realized_balance,
			unrealized_pnl,
			deposits,
			withdrawals
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		snapshot.UserUID,
		snapshot.Exchange,
		snapshot.Label,
		snapshot.Timestamp,
		snapshot.TotalEquity,
		snapshot.RealizedBalance,
		snapshot.UnrealizedPnL,
		snapshot.Deposits,
		snapshot.Withdrawals,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// GetByUserAndDateRange retrieves all snapshots for a user within [from, to]
// in chronological order. The series builder depends on this ordering to pick
// close snapshots per day.
func (r *SnapshotRepository) GetByUserAndDateRange(ctx context.Context, userUID string, from, to time.Time) ([]*models.EquitySnapshot, error) {
	query := `
		SELECT
			id,
			user_uid,
			exchange,
			label,
			snapshot_at,
			total_equity,
			realized_balance,
			unrealized_pnl,
			deposits,
			withdrawals,
			created_at
		FROM equity_snapshots
		WHERE user_uid = $1
			AND snapshot_at >= $2
			AND snapshot_at <= $3
		ORDER BY snapshot_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, userUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.EquitySnapshot

	for rows.Next() {
		var snapshot models.EquitySnapshot
		err := rows.Scan(
			&snapshot.ID,
			&snapshot.UserUID,
			&snapshot.Exchange,
			&snapshot.Label,
			&snapshot.Timestamp,
			&snapshot.TotalEquity,
			&snapshot.RealizedBalance,
			&snapshot.UnrealizedPnL,
			&snapshot.Deposits,
			&snapshot.Withdrawals,
			&snapshot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, &snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshots, nil
}

// GetEarliestTimestamp returns the timestamp of the user's first snapshot,
// or nil if the user has none. Used to default the report period start.
func (r *SnapshotRepository) GetEarliestTimestamp(ctx context.Context, userUID string) (*time.Time, error) {
	query := `
		SELECT snapshot_at
		FROM equity_snapshots
		WHERE user_uid = $1
		ORDER BY snapshot_at ASC
		LIMIT 1
	`

	var earliest time.Time
	err := r.pool.QueryRow(ctx, query, userUID).Scan(&earliest)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query earliest snapshot: %w", err)
	}

	return &earliest, nil
}

// CountByUser returns the number of snapshots stored for a user
func (r *SnapshotRepository) CountByUser(ctx context.Context, userUID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM equity_snapshots
		WHERE user_uid = $1
	`

	var count int64
	if err := r.pool.QueryRow(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	return count, nil
}
