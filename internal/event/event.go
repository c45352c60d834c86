package event

import "time"

// LocationTBA is stored when a candidate carries no location line.
const LocationTBA = "TBA"

// ExtractionMethod records which strategy produced a candidate. It is kept
// for diagnostics only and never participates in identity.
type ExtractionMethod string

const (
	MethodStructuredContainer ExtractionMethod = "structured-container"
	MethodSequentialLineScan  ExtractionMethod = "sequential-line-scan"
)

// RawEvent is a single extraction candidate, verbatim page text that has not
// been normalized or trusted yet. Many RawEvents across repeated runs map to
// one canonical Event via Key.
type RawEvent struct {
	DateText     string           `json:"date_text"`
	Title        string           `json:"title"`
	LocationText string           `json:"location_text,omitempty"`
	SourceURL    string           `json:"source_url"`
	Method       ExtractionMethod `json:"method"`
}

// Location returns the candidate location, falling back to the TBA sentinel.
func (r RawEvent) Location() string {
	if r.LocationText == "" {
		return LocationTBA
	}
	return r.LocationText
}

// Event is the canonical, persisted record that drives all display. The store
// exclusively owns the Event collection; other components only read it or
// produce transient RawEvents.
type Event struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	DateText        string    `json:"date_text"`
	EventTime       time.Time `json:"event_time"`
	SourceURL       string    `json:"source_url"`
	AttendanceCount int       `json:"attendance_count"`
	LastSeenAt      time.Time `json:"last_seen_at"`
}
