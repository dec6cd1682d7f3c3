package application

import (
	"context"
	"errors"
	"log"
	"time"

	ingestapp "adledger/internal/ingestion/application"
	"adledger/internal/observability/metrics"
	report "adledger/internal/report/domain"
)

// Notifier surfaces records that carry data-entry anomalies. Delivery failure
// never fails the ingest.
type Notifier interface {
	NotifyAnomaly(ctx context.Context, record *report.DayReport) error
}

// SheetBatch is one tabular sheet plus its mapping context.
type SheetBatch struct {
	CountryID string
	SheetName string
	Header    []string
	Rows      [][]any
}

// RowResult is the per-row outcome of an ingestion pass.
type RowResult struct {
	Date time.Time
	Err  error
}

// PassReport summarizes one ingestion pass.
type PassReport struct {
	Persisted int
	Discarded int
	Failed    int
	Results   []RowResult
}

// Service runs the ingestion pipeline: normalize, derive, reconcile, upsert.
type Service struct {
	repo     report.Repository
	cfg      Config
	notifier Notifier
	logger   *log.Logger
}

// Option configures the service.
type Option func(*Service)

// WithNotifier attaches an anomaly notifier.
func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithLogger overrides the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs an ingestion service.
func NewService(repo report.Repository, cfg Config, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("ingest service: nil repository")
	}
	svc := &Service{
		repo:   repo,
		cfg:    cfg,
		logger: log.New(log.Writer(), "[ingest] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// IngestSheet processes one sheet batch. Every row is processed; a storage
// failure on one row is recorded in the report and never aborts the batch.
// The dedup set is scoped to this call.
func (s *Service) IngestSheet(ctx context.Context, batch SheetBatch) (PassReport, error) {
	if batch.CountryID == "" {
		return PassReport{}, report.ErrEmptyCountryID
	}
	started := time.Now()

	rows, _, stats := ingestapp.Normalize(batch.Header, batch.Rows, ingestapp.NewDedupSet())
	rates := s.cfg.RatesFor(batch.CountryID)

	pass := PassReport{
		Discarded: stats.NoDate + stats.NoActivity + stats.DuplicateDay,
		Results:   make([]RowResult, 0, len(rows)),
	}
	metrics.RowsDiscarded(batch.CountryID, "no_date", stats.NoDate)
	metrics.RowsDiscarded(batch.CountryID, "no_activity", stats.NoActivity)
	metrics.RowsDiscarded(batch.CountryID, "duplicate_day", stats.DuplicateDay)

	for _, row := range rows {
		record := report.Reconcile(report.Derive(batch.CountryID, row, rates), row.Precomputed)
		result := RowResult{Date: record.Date}
		if err := s.repo.Upsert(ctx, record); err != nil {
			result.Err = err
			pass.Failed++
			metrics.UpsertResult(batch.CountryID, false)
			s.logger.Printf("upsert failed: country=%s date=%s err=%v",
				batch.CountryID, record.Date.Format("2006-01-02"), err)
		} else {
			pass.Persisted++
			metrics.UpsertResult(batch.CountryID, true)
			if record.HasAnomaly() {
				s.notifyAnomaly(ctx, record)
			}
		}
		pass.Results = append(pass.Results, result)
	}

	metrics.IngestPass(batch.CountryID, time.Since(started), pass.Failed == 0)
	s.logger.Printf("ingest pass: country=%s sheet=%s persisted=%d discarded=%d failed=%d",
		batch.CountryID, batch.SheetName, pass.Persisted, pass.Discarded, pass.Failed)
	return pass, nil
}

// IngestSheets processes independent sheet batches sequentially and merges
// their reports. Batches do not share dedup state.
func (s *Service) IngestSheets(ctx context.Context, batches []SheetBatch) (PassReport, error) {
	var merged PassReport
	for _, batch := range batches {
		pass, err := s.IngestSheet(ctx, batch)
		if err != nil {
			return merged, err
		}
		merged.Persisted += pass.Persisted
		merged.Discarded += pass.Discarded
		merged.Failed += pass.Failed
		merged.Results = append(merged.Results, pass.Results...)
	}
	return merged, nil
}

func (s *Service) notifyAnomaly(ctx context.Context, record *report.DayReport) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyAnomaly(ctx, record); err != nil {
		s.logger.Printf("anomaly notify failed: country=%s date=%s err=%v",
			record.CountryID, record.Date.Format("2006-01-02"), err)
	}
}
