package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bearduk/beard-events/internal/event"
)

// StructuredContainer extracts from semantically-marked event containers:
// elements with a role or test-id hint that also link to an individual event
// page. It is the preferred strategy because per-event links are only
// recoverable here.
type StructuredContainer struct{}

// TryExtract locates candidate containers and reads each one line by line:
// the first date-grammar line, the first marker line, and the first remaining
// line become date, title and location. Containers missing a date or a title
// are discarded.
func (s *StructuredContainer) TryExtract(snap *Snapshot) []event.RawEvent {
	doc := snap.Document()
	if doc == nil {
		return nil
	}

	var out []event.RawEvent
	doc.Find(`[role="article"], [data-testid]`).Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find(`a[href*="/events/"]`).First()
		if link.Length() == 0 {
			return
		}

		cand, ok := candidateFromLines(splitLines(sel.Text()))
		if !ok {
			return
		}

		cand.SourceURL = snap.ListingURL
		if href, exists := link.Attr("href"); exists {
			cand.SourceURL = absoluteURL(href, snap.ListingURL)
		}
		cand.Method = event.MethodStructuredContainer
		out = append(out, cand)
	})

	return out
}

// candidateFromLines picks the date, title and location lines out of a
// container's text.
func candidateFromLines(lines []string) (event.RawEvent, bool) {
	var cand event.RawEvent

	for _, l := range lines {
		if cand.DateText == "" && event.MatchesDate(l) {
			cand.DateText = l
			continue
		}
		if cand.Title == "" && hasMarker(l) {
			cand.Title = l
		}
	}
	if cand.DateText == "" || cand.Title == "" {
		return event.RawEvent{}, false
	}

	for _, l := range lines {
		if l == cand.DateText || l == cand.Title || event.MatchesDate(l) {
			continue
		}
		cand.LocationText = l
		break
	}

	return cand, true
}

func hasMarker(line string) bool {
	l := strings.ToLower(line)
	return strings.Contains(l, BandMarker) || strings.Contains(l, "@")
}

// absoluteURL resolves container-relative event links against the listing
// page URL.
func absoluteURL(href, listingURL string) string {
	base, err := url.Parse(listingURL)
	if err != nil {
		return listingURL
	}
	ref, err := url.Parse(href)
	if err != nil {
		return listingURL
	}
	return base.ResolveReference(ref).String()
}
