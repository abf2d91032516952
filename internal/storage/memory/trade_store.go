package memory

import (
	"context"
	"sort"
	"sync"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu           sync.RWMutex
	data         map[string]*domain.Trade // keyed by id
	seq          map[string]int           // insertion order, tie-breaker for ordering
	fingerprints map[string]struct{}      // account_id|fingerprint
	next         int
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data:         make(map[string]*domain.Trade),
		seq:          make(map[string]int),
		fingerprints: make(map[string]struct{}),
	}
}

func fingerprintKey(accountID, fingerprint string) string {
	return accountID + "|" + fingerprint
}

// Insert adds a new trade. Returns ErrDuplicateKey if id or (account_id, fingerprint) exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" || t.AccountID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if t.Fingerprint != "" {
		key := fingerprintKey(t.AccountID, t.Fingerprint)
		if _, exists := s.fingerprints[key]; exists {
			return storage.ErrDuplicateKey
		}
		s.fingerprints[key] = struct{}{}
	}

	s.data[t.ID] = cloneTrade(t)
	s.seq[t.ID] = s.next
	s.next++
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, id string) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneTrade(t), nil
}

// GetByAccount retrieves all trades of an account in chronological order.
func (s *TradeStore) GetByAccount(_ context.Context, accountID string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.AccountID == accountID {
			result = append(result, cloneTrade(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.TradeDate != b.TradeDate {
			return a.TradeDate < b.TradeDate
		}
		if a.TradeTime != b.TradeTime {
			return a.TradeTime < b.TradeTime
		}
		if a.ImportedAt != b.ImportedAt {
			return a.ImportedAt < b.ImportedAt
		}
		return s.seq[a.ID] < s.seq[b.ID]
	})

	return result, nil
}

// ExistsFingerprint reports whether the account already holds the fingerprint.
func (s *TradeStore) ExistsFingerprint(_ context.Context, accountID, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.fingerprints[fingerprintKey(accountID, fingerprint)]
	return exists, nil
}

// cloneTrade copies t including the values behind its pointer fields.
func cloneTrade(t *domain.Trade) *domain.Trade {
	c := *t
	c.StrategyID = clonePtr(t.StrategyID)
	c.RiskPerTrade = clonePtr(t.RiskPerTrade)
	c.RiskRewardRatio = clonePtr(t.RiskRewardRatio)
	c.FVGSize = clonePtr(t.FVGSize)
	c.CalculatedProfit = clonePtr(t.CalculatedProfit)
	c.PnLPercentage = clonePtr(t.PnLPercentage)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var _ storage.TradeStore = (*TradeStore)(nil)
