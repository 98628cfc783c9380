package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"token-holder-lab/internal/classify"
	"token-holder-lab/internal/domain"
	"token-holder-lab/internal/observability"
	"token-holder-lab/internal/storage/memory"
)

func fixtureParams(outputDir string) Params {
	return Params{
		Token:          FixtureToken,
		Chain:          FixtureChain,
		Supply:         FixtureSupplyContext(),
		TopNCuts:       []int{10, 20, 50},
		WhaleThreshold: 0.05,
		OutputDir:      outputDir,
	}
}

func TestRunner_FixtureRun(t *testing.T) {
	dir := t.TempDir()
	snapshots := memory.NewHolderSnapshotStore()
	timeseries := memory.NewConcentrationTimeseriesStore()

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	runner := NewRunner(FixtureSource{}, classify.New(), nil).
		WithSnapshotStore(snapshots).
		WithTimeseriesStore(timeseries).
		WithClock(func() time.Time { return fixed })

	result, err := runner.Run(context.Background(), fixtureParams(dir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.SnapshotID) != 64 {
		t.Errorf("expected 64-char snapshot id, got %q", result.SnapshotID)
	}

	// Aggregates of the reference distribution.
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"top-10", result.Analysis.TopNShares[10] * 100, 42.78},
		{"top-20", result.Analysis.TopNShares[20] * 100, 50.14},
		{"top-50", result.Analysis.TopNShares[50] * 100, 58.60},
		{"hhi", result.Analysis.HHI, 532.48},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 0.01 {
			t.Errorf("%s = %.4f, want %.4f +/- 0.01", c.name, c.got, c.want)
		}
	}
	if len(result.Analysis.Flagged) != 2 {
		t.Errorf("expected 2 flagged whales, got %d", len(result.Analysis.Flagged))
	}

	// Snapshot persisted with the full pull, locked wallets included.
	snap, err := snapshots.GetByID(context.Background(), result.SnapshotID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if snap.HolderCount != 102 {
		t.Errorf("expected 102 raw holders in snapshot, got %d", snap.HolderCount)
	}
	if snap.TakenAt != fixed.UnixMilli() {
		t.Errorf("expected taken_at %d, got %d", fixed.UnixMilli(), snap.TakenAt)
	}

	// Timeseries point persisted with locked wallets excluded from count.
	points, err := timeseries.GetByToken(context.Background(), FixtureToken)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 timeseries point, got %d", len(points))
	}
	if points[0].HolderCount != 100 {
		t.Errorf("expected 100 ranked holders in point, got %d", points[0].HolderCount)
	}
	if points[0].FlaggedCount != 2 {
		t.Errorf("expected flagged count 2, got %d", points[0].FlaggedCount)
	}

	// Output files rendered.
	for _, name := range []string{HolderCSVFile, FilteredCSVFile, ReportMDFile} {
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(body) == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	md, _ := os.ReadFile(filepath.Join(dir, ReportMDFile))
	if !strings.Contains(string(md), "| Top 10 | 42.78% |") {
		t.Errorf("markdown missing top-10 cut:\n%s", md)
	}

	csv, _ := os.ReadFile(filepath.Join(dir, HolderCSVFile))
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	if len(lines) != 101 {
		t.Errorf("expected header + 100 ranked rows, got %d lines", len(lines))
	}
	if strings.Contains(string(csv), FixtureLockedAddresses[0]) {
		t.Error("locked wallet leaked into the holder CSV")
	}
}

func TestRunner_DeterministicSnapshotID(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	run := func() string {
		runner := NewRunner(FixtureSource{}, nil, nil).
			WithClock(func() time.Time { return fixed })
		result, err := runner.Run(context.Background(), fixtureParams(""))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result.SnapshotID
	}

	if run() != run() {
		t.Error("same token, time and holder count must yield the same snapshot id")
	}
}

func TestRunner_DuplicateSnapshotRejected(t *testing.T) {
	snapshots := memory.NewHolderSnapshotStore()
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	runner := NewRunner(FixtureSource{}, nil, nil).
		WithSnapshotStore(snapshots).
		WithClock(func() time.Time { return fixed })

	if _, err := runner.Run(context.Background(), fixtureParams("")); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := runner.Run(context.Background(), fixtureParams("")); err == nil {
		t.Fatal("second identical run should fail on duplicate snapshot id")
	}
}

func TestRunner_Metrics(t *testing.T) {
	m := observability.NewMetrics("test")
	runner := NewRunner(FixtureSource{}, nil, nil).
		WithSnapshotStore(memory.NewHolderSnapshotStore()).
		WithTimeseriesStore(memory.NewConcentrationTimeseriesStore()).
		WithMetrics(m)

	if _, err := runner.Run(context.Background(), fixtureParams("")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := testutil.ToFloat64(m.SnapshotsPersisted); got != 1 {
		t.Errorf("snapshots persisted counter = %f, want 1", got)
	}
	if got := testutil.ToFloat64(m.TimeseriesPersisted); got != 1 {
		t.Errorf("timeseries persisted counter = %f, want 1", got)
	}
	if got := testutil.ToFloat64(m.HoldersFetched); got != 102 {
		t.Errorf("holders fetched counter = %f, want 102", got)
	}
	if got := testutil.ToFloat64(m.FlaggedHolders); got != 2 {
		t.Errorf("flagged holders gauge = %f, want 2", got)
	}
	if got := testutil.ToFloat64(m.AnalysisRunsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok runs counter = %f, want 1", got)
	}
}

func TestRunner_SourceErrorPropagates(t *testing.T) {
	runner := NewRunner(failingSource{}, nil, nil)
	if _, err := runner.Run(context.Background(), fixtureParams("")); err == nil {
		t.Fatal("expected source error to propagate")
	}
}

type failingSource struct{}

func (failingSource) FetchTopHolders(context.Context, domain.Chain, string) ([]domain.HolderRecord, error) {
	return nil, context.DeadlineExceeded
}
