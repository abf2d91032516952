package clickhouse

import (
	"context"
	"fmt"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// StatsSnapshotStore implements storage.StatsSnapshotStore using ClickHouse.
type StatsSnapshotStore struct {
	conn *Conn
}

// NewStatsSnapshotStore creates a new StatsSnapshotStore.
func NewStatsSnapshotStore(conn *Conn) *StatsSnapshotStore {
	return &StatsSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StatsSnapshotStore = (*StatsSnapshotStore)(nil)

// InsertBulk adds multiple snapshot rows. Fails entire batch on any duplicate.
// ReplacingMergeTree would silently collapse duplicates, so they are checked up front.
func (s *StatsSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.StatsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.AccountID == "" || snap.Dimension == "" || snap.ComputedAt <= 0 {
			return storage.ErrInvalidInput
		}
		key := fmt.Sprintf("%s|%s|%d|%s", snap.AccountID, snap.Dimension, snap.ComputedAt, snap.Label)
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO stats_snapshots (
			account_id, dimension, computed_at, label,
			total, wins, losses, be_wins, be_losses,
			win_rate, win_rate_with_be
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.AccountID, snap.Dimension, snap.ComputedAt, snap.Label,
			int64(snap.Total), int64(snap.Wins), int64(snap.Losses), int64(snap.BEWins), int64(snap.BELosses),
			snap.WinRate, snap.WinRateWithBE,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetLatest retrieves the rows of the most recent snapshot for an account and dimension.
func (s *StatsSnapshotStore) GetLatest(ctx context.Context, accountID, dimension string) ([]*domain.StatsSnapshot, error) {
	query := `
		SELECT
			account_id, dimension, computed_at, label,
			total, wins, losses, be_wins, be_losses,
			win_rate, win_rate_with_be
		FROM stats_snapshots FINAL
		WHERE account_id = ? AND dimension = ? AND computed_at = (
			SELECT max(computed_at) FROM stats_snapshots
			WHERE account_id = ? AND dimension = ?
		)
		ORDER BY total DESC, label ASC
	`

	rows, err := s.conn.Query(ctx, query, accountID, dimension, accountID, dimension)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	snapshots, err := scanStatsSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, storage.ErrNotFound
	}
	return snapshots, nil
}

// exists checks if a snapshot row with the same key exists.
func (s *StatsSnapshotStore) exists(ctx context.Context, snap *domain.StatsSnapshot) (bool, error) {
	query := `
		SELECT count(*) FROM stats_snapshots FINAL
		WHERE account_id = ? AND dimension = ? AND computed_at = ? AND label = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, snap.AccountID, snap.Dimension, snap.ComputedAt, snap.Label).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanStatsSnapshots scans multiple rows into a slice.
func scanStatsSnapshots(rows chRows) ([]*domain.StatsSnapshot, error) {
	var snapshots []*domain.StatsSnapshot

	for rows.Next() {
		var snap domain.StatsSnapshot
		var total, wins, losses, beWins, beLosses int64
		err := rows.Scan(
			&snap.AccountID, &snap.Dimension, &snap.ComputedAt, &snap.Label,
			&total, &wins, &losses, &beWins, &beLosses,
			&snap.WinRate, &snap.WinRateWithBE,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Total = int(total)
		snap.Wins = int(wins)
		snap.Losses = int(losses)
		snap.BEWins = int(beWins)
		snap.BELosses = int(beLosses)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}
