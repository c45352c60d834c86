package event

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dateText string
		want     time.Time
	}{
		{
			name:     "Tomorrow with time",
			dateText: "Tomorrow at 14:30",
			want:     time.Date(2025, time.January, 2, 14, 30, 0, 0, time.UTC),
		},
		{
			name:     "Tomorrow without time defaults to 19:00",
			dateText: "Tomorrow",
			want:     time.Date(2025, time.January, 2, 19, 0, 0, 0, time.UTC),
		},
		{
			name:     "Today with time",
			dateText: "Today at 20:00",
			want:     time.Date(2025, time.January, 1, 20, 0, 0, 0, time.UTC),
		},
		{
			name:     "Weekday day-first with timezone suffix",
			dateText: "Fri, 28 Nov at 21:00 GMT",
			want:     time.Date(2025, time.November, 28, 21, 0, 0, 0, time.UTC),
		},
		{
			name:     "Weekday month-first with PM",
			dateText: "Fri, Nov 28 at 9:00 PM",
			want:     time.Date(2025, time.November, 28, 21, 0, 0, 0, time.UTC),
		},
		{
			name:     "Midnight via 12 AM",
			dateText: "Sat, 29 Nov at 12:00 AM",
			want:     time.Date(2025, time.November, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Month name with year defaults to 19:00",
			dateText: "September 10, 2025",
			want:     time.Date(2025, time.September, 10, 19, 0, 0, 0, time.UTC),
		},
		{
			name:     "Month name with year and time",
			dateText: "September 10, 2025 at 21:30",
			want:     time.Date(2025, time.September, 10, 21, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.dateText, now)
			if !got.Equal(tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.dateText, got, tt.want)
			}
		})
	}
}

func TestNormalize_YearResolution(t *testing.T) {
	// Yearless dates resolve to the current year unless they landed more
	// than 90 days in the past, in which case they roll to next year.
	tests := []struct {
		name     string
		now      time.Time
		dateText string
		wantYear int
	}{
		{
			name:     "Future date stays in current year",
			now:      time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
			dateText: "Fri, 28 Nov at 21:00",
			wantYear: 2025,
		},
		{
			name:     "Recently past date stays in current year",
			now:      time.Date(2025, time.December, 15, 12, 0, 0, 0, time.UTC),
			dateText: "Fri, 28 Nov at 21:00",
			wantYear: 2025,
		},
		{
			name:     "Date over 90 days past rolls forward",
			now:      time.Date(2025, time.December, 15, 12, 0, 0, 0, time.UTC),
			dateText: "Sat, 4 Jan at 20:00",
			wantYear: 2026,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.dateText, tt.now)
			if got.Year() != tt.wantYear {
				t.Errorf("Normalize(%q, now=%v).Year() = %d, want %d",
					tt.dateText, tt.now, got.Year(), tt.wantYear)
			}
		})
	}
}

func TestNormalize_Fallback(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	want := now.AddDate(0, 0, 30)

	tests := []struct {
		name     string
		dateText string
	}{
		{name: "Unparseable text", dateText: "see poster for details"},
		{name: "Empty string", dateText: ""},
		// The grammar accepts "32" as a day; the calendar does not. The
		// failure is absorbed by the fallback, never a crash.
		{name: "Calendar-invalid day", dateText: "Fri, 32 Jan at 20:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.dateText, now)
			if !got.Equal(want) {
				t.Errorf("Normalize(%q) = %v, want fallback %v", tt.dateText, got, want)
			}
			if !got.After(now) {
				t.Errorf("Normalize(%q) = %v, fallback must be in the future", tt.dateText, got)
			}
		})
	}
}

func TestNormalize_UnknownMonthDefaultsToJanuary(t *testing.T) {
	// Unrecognized month tokens resolve to January instead of failing.
	// This is a known soft spot, preserved deliberately.
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	got := Normalize("Fri, 28 Xxx at 21:00", now)
	if got.Month() != time.January {
		t.Errorf("Normalize with unknown month token = %v, want January", got.Month())
	}
	if got.Day() != 28 {
		t.Errorf("Normalize with unknown month token day = %d, want 28", got.Day())
	}
}

func TestMatchesDate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want bool
	}{
		{name: "Day-first weekday form", s: "Fri, 28 Nov at 21:00 GMT", want: true},
		{name: "Month-first weekday form", s: "Fri, Nov 28 at 9:00 PM", want: true},
		{name: "Relative form", s: "Tomorrow at 19:00", want: true},
		{name: "Relative without time", s: "Today", want: true},
		{name: "Absolute form", s: "September 10, 2025", want: true},
		{name: "Venue line", s: "The Vaults, Southsea", want: false},
		{name: "Title line", s: "BEARD @ The Vaults", want: false},
		{name: "Empty", s: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesDate(tt.s); got != tt.want {
				t.Errorf("MatchesDate(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}
