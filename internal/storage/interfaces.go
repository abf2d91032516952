package storage

import (
	"context"

	"trade-journal-lab/internal/domain"
)

// TradeStore provides access to trades storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if id exists or
	// (account_id, fingerprint) already exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Trade, error)

	// GetByAccount retrieves all trades of an account,
	// ordered by trade_date ASC, trade_time ASC, imported_at ASC.
	GetByAccount(ctx context.Context, accountID string) ([]*domain.Trade, error)

	// ExistsFingerprint reports whether the account already holds a trade with the fingerprint.
	ExistsFingerprint(ctx context.Context, accountID, fingerprint string) (bool, error)
}

// StatsSnapshotStore provides access to stats_snapshots storage.
type StatsSnapshotStore interface {
	// InsertBulk adds multiple snapshot rows atomically. Fails entire batch on
	// duplicate (account_id, dimension, computed_at, label).
	InsertBulk(ctx context.Context, snapshots []*domain.StatsSnapshot) error

	// GetLatest retrieves the rows of the most recent snapshot for an account and dimension,
	// ordered by total DESC, label ASC. Returns ErrNotFound if no snapshot exists.
	GetLatest(ctx context.Context, accountID, dimension string) ([]*domain.StatsSnapshot, error)
}
