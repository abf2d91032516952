package main

import (
	"context"
	"fmt"

	"trade-journal-lab/internal/storage"
	chstore "trade-journal-lab/internal/storage/clickhouse"
	"trade-journal-lab/internal/storage/memory"
	"trade-journal-lab/internal/storage/migrations"
	pgstore "trade-journal-lab/internal/storage/postgres"
)

// stores holds the storage implementations used by the commands.
type stores struct {
	trades    storage.TradeStore
	snapshots storage.StatsSnapshotStore // nil when ClickHouse is not configured
}

// openStores connects to Postgres (required) and ClickHouse (optional, for snapshots).
// With migrate set, embedded migrations are applied first.
func (a *app) openStores(ctx context.Context, useMemory, migrate bool) (*stores, func(), error) {
	if useMemory {
		a.log.Info().Msg("using in-memory storage")
		return &stores{
			trades:    storage.NewInstrumentedTradeStore(memory.NewTradeStore(), a.metrics, "memory"),
			snapshots: memory.NewStatsSnapshotStore(),
		}, func() {}, nil
	}

	if a.cfg.PostgresDSN == "" {
		return nil, nil, fmt.Errorf("POSTGRES_DSN is required (use --use-memory for in-memory storage)")
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, a.cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if migrate {
		applied, err := migrations.RunPostgresMigrations(ctx, pool, a.log)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		a.log.Info().Int("applied", len(applied)).Msg("postgres schema up to date")
	}

	s := &stores{
		trades: storage.NewInstrumentedTradeStore(pgstore.NewTradeStore(pool), a.metrics, "postgres"),
	}
	cleanup := func() { pool.Close() }

	// ClickHouse
	if a.cfg.ClickHouseDSN == "" {
		a.log.Debug().Msg("CLICKHOUSE_DSN not set, snapshots disabled")
		return s, cleanup, nil
	}

	var chConn *chstore.Conn
	if migrate {
		chConn, err = migrations.RunClickhouseMigrations(ctx, a.cfg.ClickHouseDSN, a.log)
	} else {
		chConn, err = chstore.NewConn(ctx, a.cfg.ClickHouseDSN)
	}
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	s.snapshots = chstore.NewStatsSnapshotStore(chConn)

	return s, func() {
		chConn.Close()
		pool.Close()
	}, nil
}
