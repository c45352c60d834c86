// Package fetch obtains rendered snapshots of the source page. The events
// page builds its content with JavaScript, so a plain HTTP GET sees none of
// it; a headless Chromium drives the render instead.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/bearduk/beard-events/internal/scraper"
)

// DefaultTimeout bounds one capture end to end. A fetch that overruns it is
// abandoned and treated upstream as a zero-candidate extraction.
const DefaultTimeout = 60 * time.Second

// settleDelay gives the page's deferred renders a moment to finish after the
// body becomes visible.
const settleDelay = 5 * time.Second

// Fetcher supplies page snapshots. The pipeline depends on this interface so
// tests can substitute static snapshots for a live browser.
type Fetcher interface {
	Fetch(ctx context.Context) (*scraper.Snapshot, error)
}

// ChromeFetcher renders the listing page in headless Chromium and captures
// its full HTML.
type ChromeFetcher struct {
	URL     string
	Timeout time.Duration
}

// NewChromeFetcher returns a fetcher for the given listing URL.
func NewChromeFetcher(url string, timeout time.Duration) *ChromeFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ChromeFetcher{URL: url, Timeout: timeout}
}

// Fetch navigates to the listing page, waits for the document to render, and
// returns the captured DOM as a snapshot.
func (f *ChromeFetcher) Fetch(parent context.Context) (*scraper.Snapshot, error) {
	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, f.Timeout)
	defer timeoutCancel()

	var html string
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(f.URL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", f.URL, err)
	}

	snap, err := scraper.NewSnapshotFromHTML(html, f.URL)
	if err != nil {
		return nil, fmt.Errorf("capturing snapshot: %w", err)
	}
	return snap, nil
}
