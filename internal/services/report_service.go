package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"klvcli/internal/dataprocessing"
	"klvcli/internal/infrastructure"
	"klvcli/pkg/contracts/domain"
)

// Filter bounds a run to an inclusive date range. Zero times are unbounded.
// The bounds only apply to rows whose send time parsed; rows with an invalid
// send time cannot be compared against the range and flow through to the
// campaign-growth report.
type Filter struct {
	From time.Time
	To   time.Time
}

func (f Filter) excludes(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return true
	}
	if !f.To.IsZero() && t.After(f.To) {
		return true
	}
	return false
}

// ReportService runs the aggregation pipeline and owns its cross-run state.
type ReportService struct {
	logger  *slog.Logger
	metrics *infrastructure.Metrics

	mu      sync.RWMutex
	dataset []domain.RawRecord
	latest  *domain.ReportSet
}

// NewReportService creates a report service. metrics may be nil (CLI use).
func NewReportService(logger *slog.Logger, metrics *infrastructure.Metrics) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		logger:  logger.With(slog.String("component", "report_service")),
		metrics: metrics,
	}
}

// Load replaces the stored dataset with the contents of an uploaded file.
// The format is chosen by extension: .csv is read directly, .xlsx through
// the Excel parser. A structural parse failure rejects the whole upload and
// leaves the previous dataset in place.
func (s *ReportService) Load(ctx context.Context, filename string, r io.Reader) (int, error) {
	var (
		records []domain.RawRecord
		err     error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = dataprocessing.ParseCSV(r)
	case ".xlsx":
		records, err = dataprocessing.ParseExcelReader(r)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "upload rejected",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return 0, err
	}

	s.mu.Lock()
	s.dataset = records
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RowsIngested.Add(ctx, int64(len(records)))
	}
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("filename", filename),
		slog.Int("rows", len(records)))

	return len(records), nil
}

// Run re-aggregates the stored dataset into a fresh report set and swaps it
// in. An empty dataset or a filter that excludes every row with a valid send
// time clears the stored set to an explicit no-data state before the
// sentinel is returned, so consumers never observe stale tables.
func (s *ReportService) Run(ctx context.Context, filter Filter) (*domain.ReportSet, error) {
	s.mu.RLock()
	dataset := s.dataset
	s.mu.RUnlock()

	if len(dataset) == 0 {
		// A zero-row upload invalidates whatever the previous dataset
		// produced; stale tables must not outlive their data.
		s.mu.Lock()
		if s.latest != nil {
			s.latest = clearedSet(0, 0)
		}
		s.mu.Unlock()
		return nil, ErrNoDataset
	}

	started := time.Now()
	agg := dataprocessing.NewAggregator()
	filteredOut := 0

	for _, raw := range dataset {
		rec := dataprocessing.NormalizeRecord(raw)
		if rec.SendTime.Valid && filter.excludes(rec.SendTime.Time) {
			filteredOut++
			continue
		}
		agg.Add(rec)
	}

	set := &domain.ReportSet{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		InputRows:   len(dataset),
		FilteredOut: filteredOut,
		Tables:      agg.BuildTables(),
	}

	added, skipped := agg.RecordsBucketed()
	if s.metrics != nil {
		s.metrics.RunsTotal.Add(ctx, 1)
		s.metrics.RowsSkipped.Add(ctx, int64(skipped))
		s.metrics.RunDurationMs.Record(ctx, float64(time.Since(started).Microseconds())/1000)
	}

	// Rows with invalid send times bypass the filter and still feed the
	// campaign-growth report, so the run only counts as empty when nothing
	// reached the aggregator at all.
	if added == 0 && skipped == 0 {
		// Clear rather than keep the previous run's tables.
		cleared := clearedSet(len(dataset), filteredOut)
		s.mu.Lock()
		s.latest = cleared
		s.mu.Unlock()

		s.logger.WarnContext(ctx, "run produced no data",
			slog.String("run_id", cleared.RunID),
			slog.Int("input_rows", len(dataset)),
			slog.Int("filtered_out", filteredOut))
		return nil, ErrNoDataInRange
	}

	s.mu.Lock()
	s.latest = set
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "aggregation run complete",
		slog.String("run_id", set.RunID),
		slog.Int("input_rows", len(dataset)),
		slog.Int("bucketed", added),
		slog.Int("invalid_send_time", skipped),
		slog.Int("filtered_out", filteredOut),
		slog.Duration("elapsed", time.Since(started)))

	return set, nil
}

// clearedSet builds an explicit no-data report set: every table empty except
// the seasonal report's fixed week. Callers hold no lock.
func clearedSet(inputRows, filteredOut int) *domain.ReportSet {
	return &domain.ReportSet{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		InputRows:   inputRows,
		FilteredOut: filteredOut,
		Tables:      dataprocessing.NewAggregator().BuildTables(),
	}
}

// Latest returns the most recently produced report set.
func (s *ReportService) Latest(ctx context.Context) (*domain.ReportSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoReportSet
	}
	return s.latest, nil
}

// GetTable returns one table from the latest report set.
func (s *ReportService) GetTable(ctx context.Context, name domain.Report) (domain.ReportTable, error) {
	if !name.Valid() {
		return domain.ReportTable{}, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return domain.ReportTable{}, ErrNoReportSet
	}
	table, ok := s.latest.Table(name)
	if !ok {
		return domain.ReportTable{}, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
	return table, nil
}

// SetWriter persists a whole report set. Satisfied by exporter.CSVWriter.
type SetWriter interface {
	WriteReportSet(set *domain.ReportSet) error
}

// ExportLatest writes the latest report set through the given writer, one
// file per report.
func (s *ReportService) ExportLatest(ctx context.Context, w SetWriter) error {
	s.mu.RLock()
	set := s.latest
	s.mu.RUnlock()

	if set == nil {
		return ErrNoReportSet
	}
	if err := w.WriteReportSet(set); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, int64(len(domain.Reports)))
	}
	s.logger.InfoContext(ctx, "report set exported",
		slog.String("run_id", set.RunID),
		slog.Int("tables", len(set.Tables)))
	return nil
}

// DatasetSize returns the number of rows in the stored dataset.
func (s *ReportService) DatasetSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dataset)
}
