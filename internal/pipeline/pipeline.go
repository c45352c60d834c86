// Package pipeline wires fetch, extraction and storage into one run.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bearduk/beard-events/internal/fetch"
	"github.com/bearduk/beard-events/internal/scraper"
	"github.com/bearduk/beard-events/internal/store"
)

// Pipeline executes scheduled and manual extraction runs against the store.
type Pipeline struct {
	fetcher   fetch.Fetcher
	extractor *scraper.Extractor
	store     *store.Store
	log       *zap.Logger
}

// New assembles a pipeline.
func New(fetcher fetch.Fetcher, extractor *scraper.Extractor, st *store.Store, log *zap.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		store:     st,
		log:       log,
	}
}

// Run performs one fetch-extract-upsert cycle. A failed or timed-out fetch is
// a normal outcome: it degrades to a zero-candidate extraction and the store
// keeps whatever it already has. Zero candidates never clear stored events.
// Only store failures propagate, for the manual trigger to report.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (store.UpsertResult, error) {
	snap, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.log.Warn("fetch failed, continuing with empty extraction", zap.Error(err))
		snap = nil
	}

	candidates := p.extractor.Extract(snap)
	p.log.Info("extraction finished", zap.Int("candidates", len(candidates)))

	res, err := p.store.Upsert(ctx, candidates, now)
	if err != nil {
		return res, err
	}
	p.log.Info("upsert finished",
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("pruned", res.Pruned))
	return res, nil
}

// RunIfStale runs the pipeline only when nothing has been observed within the
// store's refresh interval, bounding load on the source site. Returns false
// when the run was skipped.
func (p *Pipeline) RunIfStale(ctx context.Context, now time.Time) (bool, error) {
	stale, err := p.store.Stale(ctx, now)
	if err != nil {
		return false, err
	}
	if !stale {
		p.log.Debug("store is fresh, skipping run")
		return false, nil
	}
	_, err = p.Run(ctx, now)
	return true, err
}
