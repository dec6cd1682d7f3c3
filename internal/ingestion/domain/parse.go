package ingestion

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is day zero of the spreadsheet date serial scheme. Conversion
// goes through AddDate on this fixed reference so leap years never drift.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
}

// ParseDate turns a raw cell value into a UTC day. Accepted representations,
// tried in order: a native time value, a numeric spreadsheet serial, an
// ISO-like string, a DD.MM.YYYY / DD/MM/YYYY / DD-MM-YYYY string. The second
// return is false when none apply.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return Day(v), true
	case float64:
		return serialDate(v)
	case int:
		return serialDate(float64(v))
	case int64:
		return serialDate(float64(v))
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return time.Time{}, false
		}
		if serial, err := strconv.ParseFloat(text, 64); err == nil {
			return serialDate(serial)
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, text); err == nil {
				return Day(parsed), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func serialDate(serial float64) (time.Time, bool) {
	// Serials below ~1905 or far future are column artifacts, not dates.
	if serial < 2000 || serial > 80000 {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(serial)), true
}

// Day truncates a time to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDecimal turns a raw cell value into a float64. Everything except
// digits, '.' and '-' is stripped; ',' acts as the decimal separator only when
// no '.' is present. Empty or unparseable input is 0: missing numeric cells
// mean "no activity", not malformed data.
func ParseDecimal(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return parseDecimalString(v)
	default:
		return 0
	}
}

func parseDecimalString(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if !strings.Contains(text, ".") && strings.Count(text, ",") == 1 {
		text = strings.Replace(text, ",", ".", 1)
	}
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// ParseInt is ParseDecimal rounded to the nearest integer. Counts are never
// fractional.
func ParseInt(value any) int {
	return int(math.Round(ParseDecimal(value)))
}
