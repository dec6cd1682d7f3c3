package application

import (
	"strings"
	"time"

	ingestion "adledger/internal/ingestion/domain"
)

// DedupSet tracks calendar days already seen within one (sheet, country)
// ingestion batch. It is passed in and returned so callers control its scope;
// sharing one set across concurrent batches is not safe.
type DedupSet map[string]struct{}

// NewDedupSet returns an empty dedup set.
func NewDedupSet() DedupSet { return DedupSet{} }

func (s DedupSet) seen(day string) bool {
	_, ok := s[day]
	return ok
}

// Stats counts what happened to the raw rows of one normalization call.
type Stats struct {
	Kept          int
	SkippedBlank  int
	SkippedTotals int
	NoDate        int
	NoActivity    int
	DuplicateDay  int
}

// totals-row markers: spreadsheets embed trailing summary rows that are
// indistinguishable from data except by this literal in the first cell.
var totalsMarkers = []string{"итог", "всего", "total"}

// Normalize maps a raw header row plus data rows onto canonical rows. The
// column map is built once via the header resolver; repeated columns for the
// same field combine per that field's policy. Rows are dropped when blank,
// marked as totals, dateless, without activity, or duplicating an
// already-seen calendar day (first occurrence wins). The updated dedup set is
// returned alongside the rows.
func Normalize(header []string, rows [][]any, seen DedupSet) ([]ingestion.CanonicalRow, DedupSet, Stats) {
	if seen == nil {
		seen = NewDedupSet()
	}

	columns := make(map[int]ingestion.FieldID, len(header))
	for idx, label := range header {
		if field, ok := ingestion.Resolve(label); ok {
			columns[idx] = field
		}
	}

	var stats Stats
	out := make([]ingestion.CanonicalRow, 0, len(rows))
	for _, raw := range rows {
		if len(raw) == 0 || isBlankCell(raw[0]) {
			stats.SkippedBlank++
			continue
		}
		if isTotalsMarker(raw[0]) {
			stats.SkippedTotals++
			continue
		}

		date, values := collectRow(raw, columns)
		if date.IsZero() {
			stats.NoDate++
			continue
		}

		row := ingestion.BuildRow(date, values)
		if !row.HasActivity() {
			stats.NoActivity++
			continue
		}

		day := row.Date.Format("2006-01-02")
		if seen.seen(day) {
			stats.DuplicateDay++
			continue
		}
		seen[day] = struct{}{}

		out = append(out, row)
		stats.Kept++
	}
	return out, seen, stats
}

// collectRow gathers matched cells into an immutable value map with the
// combination policy applied, then the caller builds the row once.
func collectRow(raw []any, columns map[int]ingestion.FieldID) (date time.Time, values map[ingestion.FieldID]float64) {
	values = make(map[ingestion.FieldID]float64, len(columns))
	assigned := make(map[ingestion.FieldID]bool, len(columns))

	for idx, cell := range raw {
		field, ok := columns[idx]
		if !ok {
			continue
		}
		if field == ingestion.FieldDate {
			if parsed, ok := ingestion.ParseDate(cell); ok && date.IsZero() {
				date = parsed
			}
			continue
		}

		value := ingestion.ParseDecimal(cell)
		switch ingestion.PolicyFor(field) {
		case ingestion.CombineSum:
			values[field] += value
		case ingestion.CombineMax:
			if !assigned[field] || value > values[field] {
				values[field] = value
			}
		default:
			values[field] = value
		}
		assigned[field] = true
	}
	return date, values
}

func isBlankCell(cell any) bool {
	switch v := cell.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func isTotalsMarker(cell any) bool {
	text, ok := cell.(string)
	if !ok {
		return false
	}
	normalized := ingestion.NormalizeLabel(text)
	for _, marker := range totalsMarkers {
		if strings.HasPrefix(normalized, marker) {
			return true
		}
	}
	return false
}
