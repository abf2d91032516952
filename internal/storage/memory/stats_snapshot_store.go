package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// StatsSnapshotStore is an in-memory implementation of storage.StatsSnapshotStore.
type StatsSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StatsSnapshot // keyed by composite key
}

// NewStatsSnapshotStore creates a new in-memory stats snapshot store.
func NewStatsSnapshotStore() *StatsSnapshotStore {
	return &StatsSnapshotStore{
		data: make(map[string]*domain.StatsSnapshot),
	}
}

// snapshotKey generates a unique key for a snapshot row.
func snapshotKey(s *domain.StatsSnapshot) string {
	return fmt.Sprintf("%s|%s|%d|%s", s.AccountID, s.Dimension, s.ComputedAt, s.Label)
}

func validSnapshot(s *domain.StatsSnapshot) bool {
	return s != nil && s.AccountID != "" && s.Dimension != "" && s.ComputedAt > 0
}

// InsertBulk adds multiple snapshot rows atomically. Fails entire batch on any duplicate.
func (s *StatsSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.StatsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(snapshots))

	// First pass: check for duplicates (existing + intra-batch)
	for _, snap := range snapshots {
		if !validSnapshot(snap) {
			return storage.ErrInvalidInput
		}
		key := snapshotKey(snap)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, snap := range snapshots {
		snapCopy := *snap
		s.data[snapshotKey(snap)] = &snapCopy
	}

	return nil
}

// GetLatest retrieves the rows of the most recent snapshot for an account and dimension.
// Returns ErrNotFound if no snapshot exists.
func (s *StatsSnapshotStore) GetLatest(_ context.Context, accountID, dimension string) ([]*domain.StatsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest int64
	for _, snap := range s.data {
		if snap.AccountID == accountID && snap.Dimension == dimension && snap.ComputedAt > latest {
			latest = snap.ComputedAt
		}
	}
	if latest == 0 {
		return nil, storage.ErrNotFound
	}

	var result []*domain.StatsSnapshot
	for _, snap := range s.data {
		if snap.AccountID == accountID && snap.Dimension == dimension && snap.ComputedAt == latest {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	// Sort by total DESC, then label
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Label < result[j].Label
	})

	return result, nil
}

var _ storage.StatsSnapshotStore = (*StatsSnapshotStore)(nil)
