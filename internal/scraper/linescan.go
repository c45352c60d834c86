package scraper

import "github.com/bearduk/beard-events/internal/event"

// SequentialLineScan is the fallback strategy: treat the page as a flat
// ordered line sequence and read non-overlapping (date, title, location)
// triples wherever a line matches a date grammar. It needs no markup at all,
// which makes it resilient to the source page's frequent re-renders, at the
// cost of per-event links.
type SequentialLineScan struct{}

// TryExtract scans the line sequence once. The accumulator is threaded
// through the scan and returned; nothing is shared between calls. A triple is
// accepted only when its title carries the band marker, an "@", or a known
// venue name, guarding against unrelated date-shaped text.
func (s *SequentialLineScan) TryExtract(snap *Snapshot) []event.RawEvent {
	lines := snap.Lines()

	var out []event.RawEvent
	for i := 0; i < len(lines); {
		if !event.MatchesDate(lines[i]) || i+2 >= len(lines) {
			i++
			continue
		}

		cand := event.RawEvent{
			DateText:     lines[i],
			Title:        lines[i+1],
			LocationText: lines[i+2],
			SourceURL:    snap.ListingURL,
			Method:       event.MethodSequentialLineScan,
		}
		if titleLike(cand.Title) {
			out = append(out, cand)
		}
		// Advance past the whole triple whether or not it was accepted, so
		// triples never overlap.
		i += 3
	}

	return out
}
