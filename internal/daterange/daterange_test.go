package daterange

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQuick(t *testing.T) {
	tests := []struct {
		name      string
		key       Key
		ref       time.Time
		wantStart string
		wantEnd   string
	}{
		{"this month leap february", ThisMonth, time.Date(2024, 2, 10, 15, 4, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{"this month february", ThisMonth, day(2023, 2, 28), "2023-02-01", "2023-02-28"},
		{"last month from march in leap year", LastMonth, day(2024, 3, 31), "2024-02-01", "2024-02-29"},
		{"last month rolls over year", LastMonth, day(2025, 1, 5), "2024-12-01", "2024-12-31"},
		{"this quarter", ThisQuarter, day(2024, 5, 17), "2024-04-01", "2024-06-30"},
		{"last quarter mid year", LastQuarter, day(2024, 8, 1), "2024-04-01", "2024-06-30"},
		{"last quarter in january", LastQuarter, day(2025, 1, 15), "2024-10-01", "2024-12-31"},
		{"last quarter on first day of q1", LastQuarter, day(2025, 1, 1), "2024-10-01", "2024-12-31"},
		{"last quarter on last day of q1", LastQuarter, time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC), "2024-10-01", "2024-12-31"},
		{"this year", ThisYear, day(2024, 7, 4), "2024-01-01", "2024-12-31"},
		{"last year", LastYear, day(2024, 1, 1), "2023-01-01", "2023-12-31"},
		{"last 7 days", Last7Days, time.Date(2024, 3, 3, 18, 0, 0, 0, time.UTC), "2024-02-26", "2024-03-03"},
		{"last 30 days", Last30Days, day(2024, 3, 30), "2024-03-01", "2024-03-30"},
		{"last 90 days", Last90Days, day(2024, 3, 30), "2024-01-01", "2024-03-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Quick(tt.key, tt.ref)
			if err != nil {
				t.Fatalf("Quick: %v", err)
			}
			if r.StartISO() != tt.wantStart || r.EndISO() != tt.wantEnd {
				t.Errorf("Quick(%s, %s) = %s, want %s..%s", tt.key, tt.ref.Format(time.RFC3339), r, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestQuickUnknownKey(t *testing.T) {
	_, err := Quick("fortnight", day(2024, 1, 1))
	if !errors.Is(err, ErrUnknownRange) {
		t.Fatalf("expected ErrUnknownRange, got %v", err)
	}
}

func TestQuickKeepsLocation(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*60*60)
	// 20:00 UTC on Mar 31 is already April 1 in Bangkok.
	ref := time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC).In(bangkok)
	r, err := Quick(ThisMonth, ref)
	if err != nil {
		t.Fatal(err)
	}
	if r.StartISO() != "2024-04-01" || r.EndISO() != "2024-04-30" {
		t.Errorf("got %s, want 2024-04-01..2024-04-30", r)
	}
}

func TestLastNDays(t *testing.T) {
	ref := day(2024, 3, 1)
	r := LastNDays(1, ref)
	if r.StartISO() != "2024-03-01" || r.EndISO() != "2024-03-01" {
		t.Errorf("LastNDays(1) = %s", r)
	}
	if got := LastNDays(0, ref).Days(); got != 1 {
		t.Errorf("LastNDays(0).Days() = %d, want 1", got)
	}
	if got := LastNDays(3, ref); got.StartISO() != "2024-02-28" {
		t.Errorf("LastNDays(3) start = %s, want 2024-02-28", got.StartISO())
	}
	if got := LastNDays(45, ref).Days(); got != 45 {
		t.Errorf("Days() = %d, want 45", got)
	}
}

func TestParse(t *testing.T) {
	r, err := Parse("2024-01-01", "2024-03-31", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if r.Days() != 91 {
		t.Errorf("Days = %d, want 91", r.Days())
	}

	r, err = Parse("", " ", time.UTC)
	if err != nil || !r.IsZero() {
		t.Errorf("empty bounds: r=%v err=%v", r, err)
	}

	if _, err := Parse("2024-13-01", "", time.UTC); err == nil {
		t.Error("expected parse error for month 13")
	}
	if _, err := Parse("2024-04-01", "2024-03-01", time.UTC); !errors.Is(err, ErrInvertedRange) {
		t.Errorf("expected ErrInvertedRange, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	ref := day(2024, 5, 10)
	tests := []struct {
		name             string
		key, start, end  string
		def              Key
		wantStart, wantE string
	}{
		{"explicit bounds win", "this_year", "2024-02-01", "2024-02-10", ThisMonth, "2024-02-01", "2024-02-10"},
		{"quick key", "last_month", "", "", ThisMonth, "2024-04-01", "2024-04-30"},
		{"default", "", "", "", ThisQuarter, "2024-04-01", "2024-06-30"},
		{"no default", "", "", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Resolve(tt.key, tt.start, tt.end, tt.def, ref)
			if err != nil {
				t.Fatal(err)
			}
			if r.StartISO() != tt.wantStart || r.EndISO() != tt.wantE {
				t.Errorf("got %s, want %s..%s", r, tt.wantStart, tt.wantE)
			}
		})
	}
}
