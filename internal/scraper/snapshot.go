package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Snapshot is one capture of the source page. Both strategies work from the
// same snapshot: the structured pass over its DOM, the line scan over its
// flat text. A snapshot may also be built from a plain text dump, in which
// case only the line view is populated.
type Snapshot struct {
	// ListingURL is the page the snapshot came from; used as the fallback
	// source URL for candidates without an individual event link.
	ListingURL string

	doc   *goquery.Document
	lines []string
}

// NewSnapshotFromHTML parses rendered page HTML into a snapshot.
func NewSnapshotFromHTML(html, listingURL string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot HTML: %w", err)
	}
	return &Snapshot{
		ListingURL: listingURL,
		doc:        doc,
		lines:      splitLines(doc.Find("body").Text()),
	}, nil
}

// NewSnapshotFromText wraps a rendered-page text dump. The structured
// strategy has no DOM to work with and yields nothing; the line scan still
// applies.
func NewSnapshotFromText(text, listingURL string) *Snapshot {
	return &Snapshot{
		ListingURL: listingURL,
		lines:      splitLines(text),
	}
}

// Document returns the parsed DOM, or nil for text-only snapshots.
func (s *Snapshot) Document() *goquery.Document {
	return s.doc
}

// Lines returns the page as an ordered sequence of non-empty trimmed lines.
func (s *Snapshot) Lines() []string {
	return s.lines
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
