package storage

import (
	"context"

	"token-holder-lab/internal/domain"
)

// HolderSnapshotStore provides access to holder snapshot storage.
type HolderSnapshotStore interface {
	// Insert adds a snapshot with its records. Returns ErrDuplicateKey if
	// snapshot_id exists.
	Insert(ctx context.Context, s *domain.HolderSnapshot) error

	// GetByID retrieves a snapshot and its records by snapshot ID.
	// Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, snapshotID string) (*domain.HolderSnapshot, error)

	// GetByToken retrieves all snapshots for a token, ordered by taken_at ASC.
	GetByToken(ctx context.Context, token string) ([]*domain.HolderSnapshot, error)

	// Latest retrieves the most recent snapshot for a token.
	// Returns ErrNotFound if the token has no snapshots.
	Latest(ctx context.Context, token string) (*domain.HolderSnapshot, error)
}

// ConcentrationTimeseriesStore provides access to concentration analysis
// results over time.
type ConcentrationTimeseriesStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (snapshot_id).
	InsertBulk(ctx context.Context, points []*domain.ConcentrationPoint) error

	// GetByToken retrieves all points for a token, ordered by taken_at ASC.
	GetByToken(ctx context.Context, token string) ([]*domain.ConcentrationPoint, error)

	// GetByTimeRange retrieves points for a token within [start, end]
	// (inclusive, ms).
	GetByTimeRange(ctx context.Context, token string, start, end int64) ([]*domain.ConcentrationPoint, error)
}
