package ingestion

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  time.Time
		fail  bool
	}{
		{name: "iso", value: "2025-03-15", want: day(2025, time.March, 15)},
		{name: "iso with time", value: "2025-03-15 10:30:00", want: day(2025, time.March, 15)},
		{name: "dotted", value: "15.03.2025", want: day(2025, time.March, 15)},
		{name: "slashed", value: "15/03/2025", want: day(2025, time.March, 15)},
		{name: "dashed", value: "15-03-2025", want: day(2025, time.March, 15)},
		{name: "serial float", value: float64(44927), want: day(2023, time.January, 1)},
		{name: "serial string", value: "44927", want: day(2023, time.January, 1)},
		{name: "serial across leap day", value: float64(45352), want: day(2024, time.March, 1)},
		{name: "native time", value: time.Date(2025, time.March, 15, 18, 0, 0, 0, time.UTC), want: day(2025, time.March, 15)},
		{name: "empty", value: "", fail: true},
		{name: "garbage", value: "итого", fail: true},
		{name: "nil", value: nil, fail: true},
		{name: "small number", value: float64(7), fail: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDate(tc.value)
			if tc.fail {
				if ok {
					t.Fatalf("ParseDate(%v) = %s, want failure", tc.value, got)
				}
				return
			}
			if !ok {
				t.Fatalf("ParseDate(%v) failed, want %s", tc.value, tc.want)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseDate(%v) = %s, want %s", tc.value, got, tc.want)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		value any
		want  float64
	}{
		{"100", 100},
		{"1 234.56", 1234.56},
		{"1234,56", 1234.56},
		{"1,234.56", 1234.56},
		{"-42.5", -42.5},
		{"$ 99.90", 99.9},
		{"100 USDT", 100},
		{"", 0},
		{"n/a", 0},
		{nil, 0},
		{float64(3.5), 3.5},
		{42, 42},
	}
	for _, tc := range cases {
		if got := ParseDecimal(tc.value); got != tc.want {
			t.Errorf("ParseDecimal(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestParseInt(t *testing.T) {
	cases := []struct {
		value any
		want  int
	}{
		{"7", 7},
		{"7.4", 7},
		{"7.5", 8},
		{"", 0},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := ParseInt(tc.value); got != tc.want {
			t.Errorf("ParseInt(%v) = %d, want %d", tc.value, got, tc.want)
		}
	}
}
