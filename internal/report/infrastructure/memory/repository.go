package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	ingestion "adledger/internal/ingestion/domain"
	report "adledger/internal/report/domain"
)

// ReportRepository is an in-memory implementation of report.Repository.
type ReportRepository struct {
	mu   sync.RWMutex
	data map[string]*report.DayReport
}

// NewReportRepository constructs a repository.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{data: make(map[string]*report.DayReport)}
}

func key(countryID string, date time.Time) string {
	return countryID + "/" + ingestion.Day(date).Format("2006-01-02")
}

// FindByDateAndCountry loads one record, or nil when absent.
func (r *ReportRepository) FindByDateAndCountry(ctx context.Context, date time.Time, countryID string) (*report.DayReport, error) {
	_ = ctx
	if countryID == "" {
		return nil, report.ErrEmptyCountryID
	}
	if date.IsZero() {
		return nil, report.ErrInvalidDate
	}

	r.mu.RLock()
	rec := r.data[key(countryID, date)]
	r.mu.RUnlock()
	return rec.Clone(), nil
}

// Upsert overwrites any record stored for the same (country, date) key.
func (r *ReportRepository) Upsert(ctx context.Context, rec *report.DayReport) error {
	_ = ctx
	if rec == nil {
		return report.ErrNilRecord
	}
	if rec.CountryID == "" {
		return report.ErrEmptyCountryID
	}
	if rec.Date.IsZero() {
		return report.ErrInvalidDate
	}

	copied := rec.Clone()
	copied.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	if existing := r.data[key(rec.CountryID, rec.Date)]; existing != nil {
		copied.CreatedAt = existing.CreatedAt
	} else {
		copied.CreatedAt = copied.UpdatedAt
	}
	r.data[key(rec.CountryID, rec.Date)] = copied
	r.mu.Unlock()
	return nil
}

// ListByCountryAndRange loads records for a country ordered by date,
// from inclusive, to exclusive.
func (r *ReportRepository) ListByCountryAndRange(ctx context.Context, countryID string, from, to time.Time) ([]*report.DayReport, error) {
	_ = ctx
	if countryID == "" {
		return nil, report.ErrEmptyCountryID
	}
	from = ingestion.Day(from)
	to = ingestion.Day(to)

	r.mu.RLock()
	var out []*report.DayReport
	for _, rec := range r.data {
		if rec.CountryID != countryID {
			continue
		}
		if rec.Date.Before(from) || !rec.Date.Before(to) {
			continue
		}
		out = append(out, rec.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
