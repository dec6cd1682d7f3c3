package ingestion

import (
	"math"
	"time"
)

// CanonicalRow is one spreadsheet data row translated to semantics. It is
// constructed once per ingestion pass and never mutated afterwards.
type CanonicalRow struct {
	Date time.Time

	// Spend holds per-channel ad spend keyed by channel name.
	Spend map[string]float64

	SettlementRevenueLocal   float64
	SettlementRevenueSettled float64
	OwnRevenueLocal          float64
	OwnRevenueSettled        float64

	FirstDepositCount    int
	AltDepositCount      int
	FirstDepositSumLocal float64

	// OtherCosts holds named additional expenses (tracker tooling, misc).
	OtherCosts map[string]float64

	// Precomputed carries derived fields the source sheet already supplied.
	// Non-zero entries win over engine output during reconciliation.
	Precomputed map[FieldID]float64
}

// Cost names used in OtherCosts.
const (
	CostTracker = "tracker"
	CostExtra   = "extra"
)

// BuildRow constructs a CanonicalRow from combined field values. The values
// map is the output of applying the per-field combination policy across all
// matched columns of a single data row.
func BuildRow(date time.Time, values map[FieldID]float64) CanonicalRow {
	row := CanonicalRow{
		Date:        Day(date),
		Spend:       map[string]float64{},
		OtherCosts:  map[string]float64{},
		Precomputed: map[FieldID]float64{},
	}
	for field, value := range values {
		if channel := SpendChannel(field); channel != "" {
			row.Spend[channel] = value
			continue
		}
		if IsPrecomputed(field) {
			if value != 0 {
				row.Precomputed[field] = value
			}
			continue
		}
		switch field {
		case FieldSettlementRevenueLocal:
			row.SettlementRevenueLocal = value
		case FieldSettlementRevenueSettled:
			row.SettlementRevenueSettled = value
		case FieldOwnRevenueLocal:
			row.OwnRevenueLocal = value
		case FieldOwnRevenueSettled:
			row.OwnRevenueSettled = value
		case FieldFirstDepositCount:
			row.FirstDepositCount = int(math.Round(value))
		case FieldFirstDepositCountAlt:
			row.AltDepositCount = int(math.Round(value))
		case FieldFirstDepositSumLocal:
			row.FirstDepositSumLocal = value
		case FieldTrackerCost:
			row.OtherCosts[CostTracker] = value
		case FieldExtraCost:
			row.OtherCosts[CostExtra] = value
		}
	}
	return row
}

// HasActivity reports whether any monetary or count field is non-zero. Rows
// without activity are not persisted: a day with no data collected is
// indistinguishable from an all-zero export row.
func (r CanonicalRow) HasActivity() bool {
	for _, v := range r.Spend {
		if v != 0 {
			return true
		}
	}
	for _, v := range r.OtherCosts {
		if v != 0 {
			return true
		}
	}
	for _, v := range r.Precomputed {
		if v != 0 {
			return true
		}
	}
	if r.SettlementRevenueLocal != 0 || r.SettlementRevenueSettled != 0 {
		return true
	}
	if r.OwnRevenueLocal != 0 || r.OwnRevenueSettled != 0 {
		return true
	}
	if r.FirstDepositCount != 0 || r.AltDepositCount != 0 || r.FirstDepositSumLocal != 0 {
		return true
	}
	return false
}

// TotalOtherCosts sums the named additional expenses.
func (r CanonicalRow) TotalOtherCosts() float64 {
	var total float64
	for _, v := range r.OtherCosts {
		total += v
	}
	return total
}
