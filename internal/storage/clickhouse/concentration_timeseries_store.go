package clickhouse

import (
	"context"
	"fmt"

	"token-holder-lab/internal/domain"
	"token-holder-lab/internal/storage"
)

// ConcentrationTimeseriesStore implements
// storage.ConcentrationTimeseriesStore using ClickHouse. MergeTree does not
// enforce uniqueness, so duplicates are rejected by explicit checks before
// insert, matching the append-only contract of the other stores.
type ConcentrationTimeseriesStore struct {
	conn *Conn
}

// NewConcentrationTimeseriesStore creates a new ConcentrationTimeseriesStore.
func NewConcentrationTimeseriesStore(conn *Conn) *ConcentrationTimeseriesStore {
	return &ConcentrationTimeseriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ConcentrationTimeseriesStore = (*ConcentrationTimeseriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on any duplicate
// snapshot_id.
func (s *ConcentrationTimeseriesStore) InsertBulk(ctx context.Context, points []*domain.ConcentrationPoint) error {
	if len(points) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.SnapshotID == "" || p.Token == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[p.SnapshotID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[p.SnapshotID] = struct{}{}

		exists, err := s.exists(ctx, p.SnapshotID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO concentration_timeseries (
			snapshot_id, token, chain, taken_at,
			circulating_supply, holder_count,
			top10_share, top20_share, top50_share,
			hhi, flagged_count, whale_threshold
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.SnapshotID, p.Token, string(p.Chain), p.TakenAt,
			p.CirculatingSupply, int32(p.HolderCount),
			p.Top10Share, p.Top20Share, p.Top50Share,
			p.HHI, int32(p.FlaggedCount), p.WhaleThreshold,
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

// GetByToken retrieves all points for a token, ordered by taken_at ASC.
func (s *ConcentrationTimeseriesStore) GetByToken(ctx context.Context, token string) ([]*domain.ConcentrationPoint, error) {
	return s.query(ctx, `
		SELECT snapshot_id, token, chain, taken_at,
		       circulating_supply, holder_count,
		       top10_share, top20_share, top50_share,
		       hhi, flagged_count, whale_threshold
		FROM concentration_timeseries
		WHERE token = ?
		ORDER BY taken_at ASC
	`, token)
}

// GetByTimeRange retrieves points for a token within [start, end] inclusive.
func (s *ConcentrationTimeseriesStore) GetByTimeRange(ctx context.Context, token string, start, end int64) ([]*domain.ConcentrationPoint, error) {
	return s.query(ctx, `
		SELECT snapshot_id, token, chain, taken_at,
		       circulating_supply, holder_count,
		       top10_share, top20_share, top50_share,
		       hhi, flagged_count, whale_threshold
		FROM concentration_timeseries
		WHERE token = ? AND taken_at >= ? AND taken_at <= ?
		ORDER BY taken_at ASC
	`, token, start, end)
}

func (s *ConcentrationTimeseriesStore) query(ctx context.Context, q string, args ...any) ([]*domain.ConcentrationPoint, error) {
	rows, err := s.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query concentration timeseries: %w", err)
	}
	defer rows.Close()

	var out []*domain.ConcentrationPoint
	for rows.Next() {
		var (
			p            domain.ConcentrationPoint
			chain        string
			holderCount  int32
			flaggedCount int32
		)
		err := rows.Scan(
			&p.SnapshotID, &p.Token, &chain, &p.TakenAt,
			&p.CirculatingSupply, &holderCount,
			&p.Top10Share, &p.Top20Share, &p.Top50Share,
			&p.HHI, &flaggedCount, &p.WhaleThreshold,
		)
		if err != nil {
			return nil, fmt.Errorf("scan concentration point: %w", err)
		}
		p.Chain = domain.Chain(chain)
		p.HolderCount = int(holderCount)
		p.FlaggedCount = int(flaggedCount)
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate concentration points: %w", err)
	}
	return out, nil
}

func (s *ConcentrationTimeseriesStore) exists(ctx context.Context, snapshotID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `
		SELECT count() FROM concentration_timeseries WHERE snapshot_id = ?
	`, snapshotID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
