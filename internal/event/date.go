package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultEventHour is assumed when a date carries no time of day.
	DefaultEventHour = 19

	// rollForwardGrace keeps recently-past events in the current year rather
	// than jumping them forward at midnight on the event date. Only yearless
	// dates more than this far in the past resolve to next year.
	rollForwardGrace = 90 * 24 * time.Hour

	// fallbackOffsetDays places unparseable dates safely in the future.
	fallbackOffsetDays = 30
)

var (
	relativeRe = regexp.MustCompile(`(?i)^(today|tomorrow)(?:\s+at\s+(\d{1,2}):(\d{2}))?`)

	// "Fri, 28 Nov at 21:00 GMT" — weekday, day-first, optional AM/PM and
	// timezone suffix. The suffix is recognized but not converted; all times
	// are naive local times.
	dayFirstRe = regexp.MustCompile(`(?i)^(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*,?\s+(\d{1,2})\s+([a-z]+)\s+at\s+(\d{1,2}):(\d{2})(?:\s*(am|pm))?(?:\s*(?:gmt|bst))?`)

	// "Fri, Nov 28 at 9:00 PM" — same grammar with month-day field order.
	monthFirstRe = regexp.MustCompile(`(?i)^(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*,?\s+([a-z]+)\s+(\d{1,2})\s+at\s+(\d{1,2}):(\d{2})(?:\s*(am|pm))?(?:\s*(?:gmt|bst))?`)

	// "September 10, 2025" — absolute with a 4-digit year.
	absoluteRe = regexp.MustCompile(`(?i)^([a-z]+)\s+(\d{1,2}),\s*(\d{4})(?:\s+at\s+(\d{1,2}):(\d{2}))?$`)
)

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// monthFor resolves a month token via its first three letters. Unrecognized
// tokens resolve to January rather than failing; a known soft spot carried
// over for compatibility.
func monthFor(token string) time.Month {
	t := strings.ToLower(token)
	if len(t) > 3 {
		t = t[:3]
	}
	if m, ok := monthAbbrevs[t]; ok {
		return m
	}
	return time.January
}

// MatchesDate reports whether s begins with a recognized date grammar. The
// extractor uses this both to locate date lines and to discard candidates
// whose date text could never normalize.
func MatchesDate(s string) bool {
	s = strings.TrimSpace(s)
	return relativeRe.MatchString(s) ||
		dayFirstRe.MatchString(s) ||
		monthFirstRe.MatchString(s) ||
		absoluteRe.MatchString(s)
}

// Normalize parses heterogeneous human-readable date text into an absolute
// timestamp, resolving ambiguous years against now. It never fails: on total
// parse failure it returns now + 30 days, a clearly-future placeholder that
// callers must treat as non-meaningful.
func Normalize(dateText string, now time.Time) time.Time {
	s := strings.TrimSpace(dateText)

	if t, ok := normalizeRelative(s, now); ok {
		return t
	}
	if t, ok := normalizeWeekday(s, now); ok {
		return t
	}
	if t, ok := normalizeAbsolute(s, now); ok {
		return t
	}
	if t, err := time.Parse("January 2, 2006", s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), DefaultEventHour, 0, 0, 0, now.Location())
	}
	if t, err := time.Parse("Jan 2, 2006", s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), DefaultEventHour, 0, 0, 0, now.Location())
	}

	return now.AddDate(0, 0, fallbackOffsetDays)
}

func normalizeRelative(s string, now time.Time) (time.Time, bool) {
	m := relativeRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	hour, minute := DefaultEventHour, 0
	if m[2] != "" {
		hour, _ = strconv.Atoi(m[2])
		minute, _ = strconv.Atoi(m[3])
	}

	offset := 0
	if strings.EqualFold(m[1], "tomorrow") {
		offset = 1
	}

	base := now.AddDate(0, 0, offset)
	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, now.Location()), true
}

func normalizeWeekday(s string, now time.Time) (time.Time, bool) {
	var day, hour, minute int
	var monthTok, meridiem string

	if m := dayFirstRe.FindStringSubmatch(s); m != nil {
		day, _ = strconv.Atoi(m[1])
		monthTok = m[2]
		hour, _ = strconv.Atoi(m[3])
		minute, _ = strconv.Atoi(m[4])
		meridiem = m[5]
	} else if m := monthFirstRe.FindStringSubmatch(s); m != nil {
		monthTok = m[1]
		day, _ = strconv.Atoi(m[2])
		hour, _ = strconv.Atoi(m[3])
		minute, _ = strconv.Atoi(m[4])
		meridiem = m[5]
	} else {
		return time.Time{}, false
	}

	hour = adjustMeridiem(hour, meridiem)
	month := monthFor(monthTok)

	t := time.Date(now.Year(), month, day, hour, minute, 0, 0, now.Location())
	// The grammar admits day values the calendar rejects ("32 Jan"); Go
	// normalizes those instead of erroring, so detect the shift and fall
	// through to the safe fallback.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}

	if now.Sub(t) > rollForwardGrace {
		t = time.Date(now.Year()+1, month, day, hour, minute, 0, 0, now.Location())
	}
	return t, true
}

func normalizeAbsolute(s string, now time.Time) (time.Time, bool) {
	m := absoluteRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	month := monthFor(m[1])

	hour, minute := DefaultEventHour, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

func adjustMeridiem(hour int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}
