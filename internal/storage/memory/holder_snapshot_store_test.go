package memory

import (
	"context"
	"errors"
	"testing"

	"token-holder-lab/internal/domain"
	"token-holder-lab/internal/storage"
)

func snapshotFixture(id, token string, takenAt int64) *domain.HolderSnapshot {
	name := "Binance"
	return &domain.HolderSnapshot{
		SnapshotID:  id,
		Token:       token,
		Chain:       domain.ChainBSC,
		TakenAt:     takenAt,
		HolderCount: 2,
		Records: []domain.HolderRecord{
			{Address: "0xaa", Balance: 100, EntityName: &name},
			{Address: "0xbb", Balance: 50},
		},
	}
}

func TestHolderSnapshotStore_InsertAndGetByID(t *testing.T) {
	store := NewHolderSnapshotStore()
	ctx := context.Background()

	snap := snapshotFixture("snap1", "bedrock-token", 1704067200000)
	if err := store.Insert(ctx, snap); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "snap1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Token != "bedrock-token" {
		t.Errorf("Token mismatch: got %s", got.Token)
	}
	if len(got.Records) != 2 {
		t.Fatalf("Records length: got %d, want 2", len(got.Records))
	}
	if *got.Records[0].EntityName != "Binance" {
		t.Errorf("EntityName mismatch: got %s", *got.Records[0].EntityName)
	}
}

func TestHolderSnapshotStore_DuplicateKey(t *testing.T) {
	store := NewHolderSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, snapshotFixture("snap1", "tok", 1)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	err := store.Insert(ctx, snapshotFixture("snap1", "tok", 2))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestHolderSnapshotStore_GetByTokenOrdered(t *testing.T) {
	store := NewHolderSnapshotStore()
	ctx := context.Background()

	// Inserted out of order, read back by taken_at ASC.
	for _, s := range []*domain.HolderSnapshot{
		snapshotFixture("snap3", "tok", 300),
		snapshotFixture("snap1", "tok", 100),
		snapshotFixture("snap2", "tok", 200),
		snapshotFixture("other", "other-token", 50),
	} {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	snaps, err := store.GetByToken(ctx, "tok")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	for i, want := range []int64{100, 200, 300} {
		if snaps[i].TakenAt != want {
			t.Errorf("snapshot %d taken_at = %d, want %d", i, snaps[i].TakenAt, want)
		}
	}
}

func TestHolderSnapshotStore_Latest(t *testing.T) {
	store := NewHolderSnapshotStore()
	ctx := context.Background()

	if _, err := store.Latest(ctx, "tok"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on empty store, got %v", err)
	}

	_ = store.Insert(ctx, snapshotFixture("snap1", "tok", 100))
	_ = store.Insert(ctx, snapshotFixture("snap2", "tok", 300))
	_ = store.Insert(ctx, snapshotFixture("snap3", "tok", 200))

	latest, err := store.Latest(ctx, "tok")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.SnapshotID != "snap2" {
		t.Errorf("latest = %s, want snap2", latest.SnapshotID)
	}
}

func TestHolderSnapshotStore_CopiesAreIsolated(t *testing.T) {
	store := NewHolderSnapshotStore()
	ctx := context.Background()

	snap := snapshotFixture("snap1", "tok", 100)
	_ = store.Insert(ctx, snap)

	got, _ := store.GetByID(ctx, "snap1")
	got.Records[0].Balance = -1

	again, _ := store.GetByID(ctx, "snap1")
	if again.Records[0].Balance != 100 {
		t.Error("mutating a returned snapshot leaked into the store")
	}
}

func TestHolderSnapshotStore_InvalidInput(t *testing.T) {
	store := NewHolderSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil snapshot: expected ErrInvalidInput, got %v", err)
	}
	if err := store.Insert(ctx, &domain.HolderSnapshot{Token: "tok"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing id: expected ErrInvalidInput, got %v", err)
	}
}
