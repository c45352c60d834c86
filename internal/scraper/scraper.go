package scraper

import (
	"strings"

	"github.com/bearduk/beard-events/internal/event"
)

// BandMarker is the token that marks a title line as one of ours. Titles
// containing an "@" qualify as well, matching how the band names its gigs
// ("BEARD @ The Vaults").
const BandMarker = "beard"

// knownVenues guards the line-scan strategy against date-shaped text
// elsewhere on the page: a scanned title must carry the band marker, an "@",
// or one of these substrings.
var knownVenues = []string{
	"the vaults",
	"steam town",
	"steamtown",
	"the anglers",
}

// Strategy is one extraction approach applied to a full snapshot.
type Strategy interface {
	// TryExtract scans the snapshot and returns every candidate it can see.
	// Returning an empty slice is a normal outcome, not an error.
	TryExtract(snap *Snapshot) []event.RawEvent
}

// Extractor runs its strategies in fixed priority order against the same
// snapshot and merges their output.
type Extractor struct {
	strategies []Strategy
}

// New returns an Extractor with the default strategy chain: structured
// containers first, sequential line scan to fill gaps.
func New() *Extractor {
	return &Extractor{
		strategies: []Strategy{
			&StructuredContainer{},
			&SequentialLineScan{},
		},
	}
}

// Extract yields candidates from every strategy, deduplicated within this
// run by exact (date text, title). Candidates with an empty title or a date
// that matches no recognized grammar are discarded here and never reach the
// store.
func (e *Extractor) Extract(snap *Snapshot) []event.RawEvent {
	if snap == nil {
		return nil
	}

	seen := make(map[[2]string]bool)
	merged := make([]event.RawEvent, 0)

	for _, s := range e.strategies {
		for _, cand := range s.TryExtract(snap) {
			if cand.Title == "" || !event.MatchesDate(cand.DateText) {
				continue
			}
			k := [2]string{cand.DateText, cand.Title}
			if seen[k] {
				continue
			}
			seen[k] = true
			merged = append(merged, cand)
		}
	}

	return merged
}

// titleLike reports whether a line qualifies as an event title for the line
// scan: band marker, "@", or a known venue substring.
func titleLike(line string) bool {
	l := strings.ToLower(line)
	if strings.Contains(l, BandMarker) || strings.Contains(l, "@") {
		return true
	}
	for _, v := range knownVenues {
		if strings.Contains(l, v) {
			return true
		}
	}
	return false
}
