package memory

import (
	"context"
	"sort"
	"sync"

	"token-holder-lab/internal/domain"
	"token-holder-lab/internal/storage"
)

// ConcentrationTimeseriesStore is an in-memory implementation of
// storage.ConcentrationTimeseriesStore.
type ConcentrationTimeseriesStore struct {
	mu         sync.RWMutex
	bySnapshot map[string]struct{}
	byToken    map[string][]*domain.ConcentrationPoint
}

// NewConcentrationTimeseriesStore creates a new in-memory concentration
// timeseries store.
func NewConcentrationTimeseriesStore() *ConcentrationTimeseriesStore {
	return &ConcentrationTimeseriesStore{
		bySnapshot: make(map[string]struct{}),
		byToken:    make(map[string][]*domain.ConcentrationPoint),
	}
}

var _ storage.ConcentrationTimeseriesStore = (*ConcentrationTimeseriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on any duplicate
// snapshot_id, leaving the store unchanged.
func (s *ConcentrationTimeseriesStore) InsertBulk(_ context.Context, points []*domain.ConcentrationPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.SnapshotID == "" || p.Token == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[p.SnapshotID]; dup {
			return storage.ErrDuplicateKey
		}
		if _, dup := s.bySnapshot[p.SnapshotID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[p.SnapshotID] = struct{}{}
	}

	for _, p := range points {
		cp := *p
		s.bySnapshot[p.SnapshotID] = struct{}{}
		s.byToken[p.Token] = append(s.byToken[p.Token], &cp)
	}
	for _, p := range points {
		sort.SliceStable(s.byToken[p.Token], func(i, j int) bool {
			return s.byToken[p.Token][i].TakenAt < s.byToken[p.Token][j].TakenAt
		})
	}
	return nil
}

// GetByToken retrieves all points for a token, ordered by taken_at ASC.
func (s *ConcentrationTimeseriesStore) GetByToken(_ context.Context, token string) ([]*domain.ConcentrationPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.byToken[token]
	out := make([]*domain.ConcentrationPoint, 0, len(points))
	for _, p := range points {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// GetByTimeRange retrieves points for a token within [start, end] inclusive.
func (s *ConcentrationTimeseriesStore) GetByTimeRange(_ context.Context, token string, start, end int64) ([]*domain.ConcentrationPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ConcentrationPoint
	for _, p := range s.byToken[token] {
		if p.TakenAt < start || p.TakenAt > end {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}
