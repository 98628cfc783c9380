package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"token-holder-lab/internal/domain"
	"token-holder-lab/internal/storage"
)

// HolderSnapshotStore implements storage.HolderSnapshotStore using PostgreSQL.
// A snapshot row lives in holder_snapshots; its records live in
// holder_records and are written in the same transaction.
type HolderSnapshotStore struct {
	pool *Pool
}

// NewHolderSnapshotStore creates a new HolderSnapshotStore.
func NewHolderSnapshotStore(pool *Pool) *HolderSnapshotStore {
	return &HolderSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HolderSnapshotStore = (*HolderSnapshotStore)(nil)

// Insert adds a snapshot with its records. Returns ErrDuplicateKey if
// snapshot_id exists. The snapshot and all records commit atomically.
func (s *HolderSnapshotStore) Insert(ctx context.Context, snap *domain.HolderSnapshot) error {
	if snap == nil || snap.SnapshotID == "" || snap.Token == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO holder_snapshots (
			snapshot_id, token, chain, taken_at, holder_count
		) VALUES ($1, $2, $3, $4, $5)
	`,
		snap.SnapshotID,
		snap.Token,
		string(snap.Chain),
		snap.TakenAt,
		snap.HolderCount,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert holder snapshot: %w", err)
	}

	rows := make([][]any, 0, len(snap.Records))
	for i, r := range snap.Records {
		rows = append(rows, []any{
			snap.SnapshotID, i, r.Address, r.Balance, r.EntityName, r.EntityLabel, r.EntityType,
		})
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"holder_records"},
		[]string{"snapshot_id", "rank_hint", "address", "balance", "entity_name", "entity_label", "entity_type"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy holder records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit holder snapshot: %w", err)
	}
	return nil
}

// GetByID retrieves a snapshot and its records. Returns ErrNotFound if not exists.
func (s *HolderSnapshotStore) GetByID(ctx context.Context, snapshotID string) (*domain.HolderSnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT snapshot_id, token, chain, taken_at, holder_count, created_at
		FROM holder_snapshots
		WHERE snapshot_id = $1
	`, snapshotID)

	snap, err := scanSnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get holder snapshot by id: %w", err)
	}

	if err := s.loadRecords(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// GetByToken retrieves all snapshots for a token, ordered by taken_at ASC.
func (s *HolderSnapshotStore) GetByToken(ctx context.Context, token string) ([]*domain.HolderSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT snapshot_id, token, chain, taken_at, holder_count, created_at
		FROM holder_snapshots
		WHERE token = $1
		ORDER BY taken_at ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("get holder snapshots by token: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.HolderSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan holder snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holder snapshots: %w", err)
	}

	for _, snap := range snaps {
		if err := s.loadRecords(ctx, snap); err != nil {
			return nil, err
		}
	}
	return snaps, nil
}

// Latest retrieves the most recent snapshot for a token.
func (s *HolderSnapshotStore) Latest(ctx context.Context, token string) (*domain.HolderSnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT snapshot_id, token, chain, taken_at, holder_count, created_at
		FROM holder_snapshots
		WHERE token = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`, token)

	snap, err := scanSnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest holder snapshot: %w", err)
	}

	if err := s.loadRecords(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// loadRecords fills snap.Records in ingestion order.
func (s *HolderSnapshotStore) loadRecords(ctx context.Context, snap *domain.HolderSnapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT address, balance, entity_name, entity_label, entity_type
		FROM holder_records
		WHERE snapshot_id = $1
		ORDER BY rank_hint ASC
	`, snap.SnapshotID)
	if err != nil {
		return fmt.Errorf("load holder records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.HolderRecord
		if err := rows.Scan(&r.Address, &r.Balance, &r.EntityName, &r.EntityLabel, &r.EntityType); err != nil {
			return fmt.Errorf("scan holder record: %w", err)
		}
		snap.Records = append(snap.Records, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate holder records: %w", err)
	}
	return nil
}

// scanSnapshot scans a single row into HolderSnapshot (without records).
func scanSnapshot(row pgx.Row) (*domain.HolderSnapshot, error) {
	var snap domain.HolderSnapshot
	var chain string

	err := row.Scan(
		&snap.SnapshotID,
		&snap.Token,
		&chain,
		&snap.TakenAt,
		&snap.HolderCount,
		&snap.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	snap.Chain = domain.Chain(chain)
	return &snap, nil
}
