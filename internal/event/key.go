package event

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	keyMonthRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
	keyDayRe   = regexp.MustCompile(`\b(\d{1,2})\b`)
	keyTimeRe  = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})(?:\s*(am|pm))?`)
)

// Key derives the canonical comparison identity for an observation. Title,
// location and the date component must all match for two observations to be
// the same event; title or location alone never merges.
//
// The date component is read from the raw text rather than from Normalize's
// output so that two differently-phrased strings describing the same moment
// collapse to one key even when year-rollover resolution disagrees. For the
// same reason an explicit year in the text does not participate in the key.
func Key(title, location, dateText string) string {
	return title + "|" + location + "|" + dateComponent(dateText)
}

// KeyForRaw is a convenience wrapper applying the TBA location default.
func KeyForRaw(r RawEvent) string {
	return Key(r.Title, r.Location(), r.DateText)
}

// dateComponent extracts (month, day, hour, minute) from date text. Text with
// no recognizable month+day pair is compared literally, which is an
// intentionally weaker form of dedup for unparsed dates.
func dateComponent(dateText string) string {
	monthTok := keyMonthRe.FindString(dateText)
	dayMatch := keyDayRe.FindString(dateText)
	if monthTok == "" || dayMatch == "" {
		return dateText
	}

	day, _ := strconv.Atoi(dayMatch)

	hour, minute := DefaultEventHour, 0
	if tm := keyTimeRe.FindStringSubmatch(dateText); tm != nil {
		hour, _ = strconv.Atoi(tm[1])
		minute, _ = strconv.Atoi(tm[2])
		hour = adjustMeridiem(hour, tm[3])
	}

	return fmt.Sprintf("%02d-%02d %02d:%02d", int(monthFor(monthTok)), day, hour, minute)
}
