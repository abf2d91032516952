package storage

import (
	"context"
	"errors"
	"time"

	"trade-journal-lab/internal/domain"
)

// QueryRecorder receives the duration and outcome of every store call.
type QueryRecorder interface {
	RecordDBQuery(database, operation string, seconds float64, err error)
}

// InstrumentedTradeStore wraps a TradeStore and reports each call to a QueryRecorder.
// ErrNotFound and ErrDuplicateKey are expected outcomes and are not reported as errors.
type InstrumentedTradeStore struct {
	next     TradeStore
	recorder QueryRecorder
	database string
}

// NewInstrumentedTradeStore creates an instrumented wrapper; database labels the metrics.
func NewInstrumentedTradeStore(next TradeStore, recorder QueryRecorder, database string) *InstrumentedTradeStore {
	return &InstrumentedTradeStore{next: next, recorder: recorder, database: database}
}

var _ TradeStore = (*InstrumentedTradeStore)(nil)

func (s *InstrumentedTradeStore) observe(operation string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateKey) {
		err = nil
	}
	s.recorder.RecordDBQuery(s.database, operation, time.Since(start).Seconds(), err)
}

func (s *InstrumentedTradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	start := time.Now()
	err := s.next.Insert(ctx, t)
	s.observe("insert_trade", start, err)
	return err
}

func (s *InstrumentedTradeStore) GetByID(ctx context.Context, id string) (*domain.Trade, error) {
	start := time.Now()
	t, err := s.next.GetByID(ctx, id)
	s.observe("get_trade", start, err)
	return t, err
}

func (s *InstrumentedTradeStore) GetByAccount(ctx context.Context, accountID string) ([]*domain.Trade, error) {
	start := time.Now()
	trades, err := s.next.GetByAccount(ctx, accountID)
	s.observe("get_trades_by_account", start, err)
	return trades, err
}

func (s *InstrumentedTradeStore) ExistsFingerprint(ctx context.Context, accountID, fingerprint string) (bool, error) {
	start := time.Now()
	exists, err := s.next.ExistsFingerprint(ctx, accountID, fingerprint)
	s.observe("exists_fingerprint", start, err)
	return exists, err
}
