// Package scraper turns a raw page snapshot into structured event candidates.
//
// Two extraction strategies run in fixed priority order: a structured pass
// over semantically-marked containers in the DOM, then a sequential scan over
// the page's flat line sequence to fill gaps. Their merged output is
// deduplicated by exact (date text, title) before being returned; the
// persisted duplicate key applied later by the store is stricter.
package scraper
