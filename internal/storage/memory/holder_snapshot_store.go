package memory

import (
	"context"
	"sort"
	"sync"

	"token-holder-lab/internal/domain"
	"token-holder-lab/internal/storage"
)

// HolderSnapshotStore is an in-memory implementation of
// storage.HolderSnapshotStore.
type HolderSnapshotStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.HolderSnapshot
	byToken map[string][]*domain.HolderSnapshot
}

// NewHolderSnapshotStore creates a new in-memory holder snapshot store.
func NewHolderSnapshotStore() *HolderSnapshotStore {
	return &HolderSnapshotStore{
		byID:    make(map[string]*domain.HolderSnapshot),
		byToken: make(map[string][]*domain.HolderSnapshot),
	}
}

var _ storage.HolderSnapshotStore = (*HolderSnapshotStore)(nil)

// Insert adds a snapshot. Returns ErrDuplicateKey if snapshot_id exists.
func (s *HolderSnapshotStore) Insert(_ context.Context, snap *domain.HolderSnapshot) error {
	if snap == nil || snap.SnapshotID == "" || snap.Token == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[snap.SnapshotID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := copySnapshot(snap)
	s.byID[snap.SnapshotID] = cp
	s.byToken[snap.Token] = append(s.byToken[snap.Token], cp)
	sort.SliceStable(s.byToken[snap.Token], func(i, j int) bool {
		return s.byToken[snap.Token][i].TakenAt < s.byToken[snap.Token][j].TakenAt
	})
	return nil
}

// GetByID retrieves a snapshot by ID. Returns ErrNotFound if not exists.
func (s *HolderSnapshotStore) GetByID(_ context.Context, snapshotID string) (*domain.HolderSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.byID[snapshotID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copySnapshot(snap), nil
}

// GetByToken retrieves all snapshots for a token, ordered by taken_at ASC.
func (s *HolderSnapshotStore) GetByToken(_ context.Context, token string) ([]*domain.HolderSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.byToken[token]
	out := make([]*domain.HolderSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, copySnapshot(snap))
	}
	return out, nil
}

// Latest retrieves the most recent snapshot for a token.
func (s *HolderSnapshotStore) Latest(_ context.Context, token string) (*domain.HolderSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.byToken[token]
	if len(snaps) == 0 {
		return nil, storage.ErrNotFound
	}
	return copySnapshot(snaps[len(snaps)-1]), nil
}

func copySnapshot(snap *domain.HolderSnapshot) *domain.HolderSnapshot {
	cp := *snap
	cp.Records = make([]domain.HolderRecord, len(snap.Records))
	copy(cp.Records, snap.Records)
	return &cp
}
