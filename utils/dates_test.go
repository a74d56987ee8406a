package utils

import (
	"testing"
	"time"
)

func TestNormalizeDateFormat(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"iso untouched", "2025-06-01", "2025-06-01"},
		{"legacy converted", "01-06-2025", "2025-06-01"},
		{"legacy end of year", "31-12-2024", "2024-12-31"},
		{"garbage untouched", "next tuesday", "next tuesday"},
		{"empty untouched", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeDateFormat(tc.in)
			if got != tc.want {
				t.Errorf("NormalizeDateFormat(%q) = %q, want %q", tc.in, got, tc.want)
			}
			// Running the result through again must not change it
			if again := NormalizeDateFormat(got); again != got {
				t.Errorf("NormalizeDateFormat is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestParseActivityStart(t *testing.T) {
	start, err := ParseActivityStart("01-06-2025", "18:30")
	if err != nil {
		t.Fatalf("ParseActivityStart returned error: %v", err)
	}
	want := time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("ParseActivityStart = %v, want %v", start, want)
	}

	if _, err := ParseActivityStart("soon", "18:30"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestIsHistorical(t *testing.T) {
	cases := []struct {
		name string
		date string
		time string
		now  time.Time
		want bool
	}{
		{"before start", "2025-01-01", "10:00", time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), false},
		{"within grace period", "2025-01-01", "10:00", time.Date(2025, 1, 1, 11, 59, 0, 0, time.UTC), false},
		{"exactly at cutoff", "2025-01-01", "10:00", time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), false},
		{"past cutoff", "2025-01-01", "10:00", time.Date(2025, 1, 1, 12, 1, 0, 0, time.UTC), true},
		{"legacy date past cutoff", "01-01-2025", "10:00", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"unparseable stays current", "someday", "10:00", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsHistorical(tc.date, tc.time, tc.now); got != tc.want {
				t.Errorf("IsHistorical(%q, %q, %v) = %v, want %v", tc.date, tc.time, tc.now, got, tc.want)
			}
		})
	}
}
