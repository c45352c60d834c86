package event

import (
	"fmt"
	"time"
)

// AssumedDuration is appended to the start time when rendering the long-form
// date string; events carry no persisted duration.
const AssumedDuration = 2 * time.Hour

// Annotated pairs an Event with its precomputed display fields.
type Annotated struct {
	Event
	Badge       string `json:"badge"`
	DisplayDate string `json:"display_date"`
}

// Annotate computes human-facing badges and long-form date strings for an
// ordered event list. The input events are not mutated; augmented copies are
// returned in the same order.
func Annotate(events []Event, now time.Time) []Annotated {
	out := make([]Annotated, 0, len(events))
	for _, e := range events {
		out = append(out, Annotated{
			Event:       e,
			Badge:       Badge(e.EventTime, now),
			DisplayDate: DisplayDate(e.EventTime),
		})
	}
	return out
}

// Badge renders the relative-time label for an event.
//
// The week label is not singular/plural corrected at the 8-day boundary
// ("In 1 weeks"); kept as-is for compatibility pending a product decision.
func Badge(eventTime, now time.Time) string {
	days := daysUntil(eventTime, now)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days <= 7:
		return fmt.Sprintf("In %d days", days)
	case days <= 30:
		return fmt.Sprintf("In %d weeks", days/7)
	case days <= 60:
		return "In about a month"
	default:
		return fmt.Sprintf("In %d months", days/30)
	}
}

// DisplayDate renders the long-form string shown under each listing, e.g.
// "Friday 28 November 2025 from 21:00-23:00".
func DisplayDate(eventTime time.Time) string {
	end := eventTime.Add(AssumedDuration)
	return fmt.Sprintf("%s %d %s %d from %s-%s",
		eventTime.Weekday(), eventTime.Day(), eventTime.Month(), eventTime.Year(),
		eventTime.Format("15:04"), end.Format("15:04"))
}

// daysUntil is the calendar-day difference between the event date and today,
// ignoring time of day on both sides.
func daysUntil(eventTime, now time.Time) int {
	a := time.Date(eventTime.Year(), eventTime.Month(), eventTime.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b) / (24 * time.Hour))
}
