// Package pipeline orchestrates one analysis run: fetch holders, classify,
// analyze concentration, persist results, render reports.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"token-holder-lab/internal/classify"
	"token-holder-lab/internal/concentration"
	"token-holder-lab/internal/domain"
	"token-holder-lab/internal/idhash"
	"token-holder-lab/internal/observability"
	"token-holder-lab/internal/reporting"
	"token-holder-lab/internal/storage"
)

// Output file names written per run.
const (
	HolderCSVFile   = "holders.csv"
	FilteredCSVFile = "holders_filtered.csv"
	ReportMDFile    = "REPORT.md"
)

// HolderSource yields the labeled top holders for a token. Satisfied by the
// holders provider client and by FixtureSource.
type HolderSource interface {
	FetchTopHolders(ctx context.Context, chain domain.Chain, token string) ([]domain.HolderRecord, error)
}

// Params describes one analysis run.
type Params struct {
	Token          string
	Chain          domain.Chain
	Supply         domain.SupplyContext
	TopNCuts       []int
	WhaleThreshold float64
	OutputDir      string
}

// Runner wires the acquisition, engine, storage and reporting stages.
// Snapshot and timeseries stores are optional; a nil store skips that stage.
type Runner struct {
	source     HolderSource
	classifier *classify.Classifier
	snapshots  storage.HolderSnapshotStore
	timeseries storage.ConcentrationTimeseriesStore
	metrics    *observability.Metrics
	log        *zap.Logger
	clock      func() time.Time
}

// NewRunner creates a pipeline runner.
func NewRunner(source HolderSource, classifier *classify.Classifier, log *zap.Logger) *Runner {
	if classifier == nil {
		classifier = classify.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		source:     source,
		classifier: classifier,
		log:        log,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// WithSnapshotStore persists the raw holder pull per run.
func (r *Runner) WithSnapshotStore(store storage.HolderSnapshotStore) *Runner {
	r.snapshots = store
	return r
}

// WithTimeseriesStore persists the flattened analysis result per run.
func (r *Runner) WithTimeseriesStore(store storage.ConcentrationTimeseriesStore) *Runner {
	r.timeseries = store
	return r
}

// WithMetrics instruments the runner.
func (r *Runner) WithMetrics(m *observability.Metrics) *Runner {
	r.metrics = m
	return r
}

// WithClock sets a custom clock function for deterministic output.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.clock = clock
	return r
}

// Result carries the outputs of one run.
type Result struct {
	SnapshotID string
	Report     *reporting.Report
	Analysis   *domain.ConcentrationReport
}

// Run executes one full analysis and writes holders.csv,
// holders_filtered.csv and REPORT.md into params.OutputDir.
func (r *Runner) Run(ctx context.Context, params Params) (*Result, error) {
	started := time.Now()
	result, err := r.run(ctx, params)

	if r.metrics != nil {
		r.metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		r.metrics.AnalysisRunsTotal.WithLabelValues(status).Inc()
		if err == nil {
			r.metrics.FlaggedHolders.Set(float64(len(result.Analysis.Flagged)))
			r.metrics.HHIValue.Set(result.Analysis.HHI)
			r.metrics.LastSuccessfulRun.SetToCurrentTime()
		}
	}
	return result, err
}

func (r *Runner) run(ctx context.Context, params Params) (*Result, error) {
	takenAt := r.clock().UnixMilli()

	records, err := r.source.FetchTopHolders(ctx, params.Chain, params.Token)
	if err != nil {
		if r.metrics != nil {
			r.metrics.FetchErrors.WithLabelValues("holders").Inc()
		}
		return nil, fmt.Errorf("fetch holders: %w", err)
	}
	if r.metrics != nil {
		r.metrics.HoldersFetched.Add(float64(len(records)))
	}
	r.log.Info("fetched holders",
		zap.String("token", params.Token),
		zap.String("chain", params.Chain.String()),
		zap.Int("count", len(records)))

	classified := r.classifier.Classify(records, params.Supply)

	analysis, err := concentration.Analyze(classified, params.Supply, params.TopNCuts, params.WhaleThreshold)
	if err != nil {
		return nil, fmt.Errorf("analyze concentration: %w", err)
	}
	r.log.Info("analysis complete",
		zap.Int("ranked", len(analysis.Ranked)),
		zap.Float64("hhi", analysis.HHI),
		zap.Int("flagged", len(analysis.Flagged)))

	snapshotID := idhash.ComputeSnapshotID(params.Token, params.Chain, takenAt, len(records))

	if r.snapshots != nil {
		snapshot := &domain.HolderSnapshot{
			SnapshotID:  snapshotID,
			Token:       domain.NormalizeAddress(params.Token),
			Chain:       params.Chain,
			TakenAt:     takenAt,
			HolderCount: len(records),
			Records:     records,
			CreatedAt:   takenAt,
		}
		if err := r.snapshots.Insert(ctx, snapshot); err != nil {
			if r.metrics != nil {
				r.metrics.StorageErrors.WithLabelValues("snapshots").Inc()
			}
			return nil, fmt.Errorf("persist snapshot %s: %w", snapshotID, err)
		}
		if r.metrics != nil {
			r.metrics.SnapshotsPersisted.Inc()
		}
		r.log.Info("snapshot persisted", zap.String("snapshot_id", snapshotID))
	}

	if r.timeseries != nil {
		// The timeseries schema carries the standard 10/20/50 cuts; a run
		// configured without one of them stores zero for that column.
		point := &domain.ConcentrationPoint{
			SnapshotID:        snapshotID,
			Token:             domain.NormalizeAddress(params.Token),
			Chain:             params.Chain,
			TakenAt:           takenAt,
			CirculatingSupply: analysis.CirculatingSupply,
			HolderCount:       len(analysis.Ranked),
			Top10Share:        analysis.TopNShares[10],
			Top20Share:        analysis.TopNShares[20],
			Top50Share:        analysis.TopNShares[50],
			HHI:               analysis.HHI,
			FlaggedCount:      len(analysis.Flagged),
			WhaleThreshold:    analysis.WhaleThreshold,
		}
		if err := r.timeseries.InsertBulk(ctx, []*domain.ConcentrationPoint{point}); err != nil {
			if r.metrics != nil {
				r.metrics.StorageErrors.WithLabelValues("timeseries").Inc()
			}
			return nil, fmt.Errorf("persist timeseries point %s: %w", snapshotID, err)
		}
		if r.metrics != nil {
			r.metrics.TimeseriesPersisted.Inc()
		}
	}

	report := reporting.NewGenerator().
		WithClock(r.clock).
		Build(params.Token, params.Chain, params.Supply, analysis)

	if params.OutputDir != "" {
		if err := writeOutputs(params.OutputDir, report); err != nil {
			return nil, err
		}
		r.log.Info("reports written", zap.String("dir", params.OutputDir))
	}

	return &Result{
		SnapshotID: snapshotID,
		Report:     report,
		Analysis:   analysis,
	}, nil
}

func writeOutputs(dir string, report *reporting.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	files := map[string]string{
		HolderCSVFile:   reporting.RenderHolderCSV(report),
		FilteredCSVFile: reporting.RenderFilteredCSV(report),
		ReportMDFile:    reporting.RenderMarkdown(report),
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
