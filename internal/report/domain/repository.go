package report

import (
	"context"
	"time"
)

// Repository persists day reports keyed uniquely on (date, country). Upsert
// fully overwrites an existing record; each ingestion run is authoritative for
// the rows it produces, so re-running with identical inputs yields identical
// stored state.
type Repository interface {
	FindByDateAndCountry(ctx context.Context, date time.Time, countryID string) (*DayReport, error)
	Upsert(ctx context.Context, record *DayReport) error
	ListByCountryAndRange(ctx context.Context, countryID string, from, to time.Time) ([]*DayReport, error)
}
