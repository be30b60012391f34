package entities

import (
	"testing"
	"time"
)

func TestNormalizeMonth_TruncatesToFirstOfMonthUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid-month UTC",
			in:   time.Date(2026, 3, 17, 14, 30, 5, 0, time.UTC),
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "already first of month",
			in:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-UTC zone keeps the wall-clock month",
			in:   time.Date(2026, 1, 31, 23, 0, 0, 0, loc),
			want: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeMonth(tc.in); !got.Equal(tc.want) {
				t.Errorf("NormalizeMonth(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestMonthKey_SortsChronologically(t *testing.T) {
	early := MonthKey(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	late := MonthKey(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC))

	if early != "2025-09" || late != "2025-10" {
		t.Errorf("unexpected keys: %q, %q", early, late)
	}
	if !(early < late) {
		t.Errorf("expected %q < %q", early, late)
	}
}

func TestMonthsBetween(t *testing.T) {
	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	if got := MonthsBetween(jan, apr); got != 3 {
		t.Errorf("MonthsBetween(jan, apr) = %d, want 3", got)
	}
	if got := MonthsBetween(jan, jan); got != 0 {
		t.Errorf("MonthsBetween(jan, jan) = %d, want 0", got)
	}
	// Reversed arguments clamp to zero instead of going negative.
	if got := MonthsBetween(apr, jan); got != 0 {
		t.Errorf("MonthsBetween(apr, jan) = %d, want 0", got)
	}
	// Day-of-month does not matter, only the calendar month.
	if got := MonthsBetween(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), jan); got != 1 {
		t.Errorf("expected one month from late December to January, got %d", got)
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in          string
		first, last string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Jane", "Jane", ""},
		{"  Jane   van  Doe ", "Jane", "van Doe"},
		{"", "", ""},
	}

	for _, tc := range cases {
		first, last := SplitName(tc.in)
		if first != tc.first || last != tc.last {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tc.in, first, last, tc.first, tc.last)
		}
	}
}
