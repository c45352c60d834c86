// Package cli defines the beard-events command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bearduk/beard-events/internal/config"
	"github.com/bearduk/beard-events/internal/fetch"
	"github.com/bearduk/beard-events/internal/logger"
	"github.com/bearduk/beard-events/internal/pipeline"
	"github.com/bearduk/beard-events/internal/scraper"
	"github.com/bearduk/beard-events/internal/store"
	"github.com/bearduk/beard-events/internal/web"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beard-events",
		Short: "Band gig listing scraped from the public events page",
		Long: `Maintains a public listing of upcoming band gigs by periodically
extracting event records from the band's social-media events page and
persisting them for display.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd(), newScrapeCmd(), newDumpCmd())
	return cmd
}

// app bundles the wired components behind every subcommand.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	pipe  *pipeline.Pipeline
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	fetcher := fetch.NewChromeFetcher(cfg.PageURL, cfg.FetchTimeout)
	pipe := pipeline.New(fetcher, scraper.New(), st, log)

	return &app{cfg: cfg, log: log, store: st, pipe: pipe}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.log.Sync()
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server and the scheduled refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			// Background refresh: each tick re-runs extraction only when the
			// store has gone stale. Failures are logged and swallowed; the
			// next tick retries naturally.
			c := cron.New()
			_, err = c.AddFunc(a.cfg.RefreshCron, func() {
				ran, err := a.pipe.RunIfStale(context.Background(), time.Now())
				if err != nil {
					a.log.Error("scheduled refresh failed", zap.Error(err))
					return
				}
				if ran {
					a.log.Info("scheduled refresh completed")
				}
			})
			if err != nil {
				return fmt.Errorf("scheduling refresh %q: %w", a.cfg.RefreshCron, err)
			}
			c.Start()
			defer c.Stop()

			srv := web.NewServer(a.store, a.pipe, a.log)
			a.log.Info("listening", zap.String("addr", a.cfg.Listen))
			if err := srv.Router().Run(a.cfg.Listen); err != nil {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		},
	}
}

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one extraction cycle and report what changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.pipe.Run(cmd.Context(), time.Now())
			if err != nil {
				return fmt.Errorf("running pipeline: %w", err)
			}
			fmt.Printf("inserted %d, updated %d, pruned %d\n", res.Inserted, res.Updated, res.Pruned)
			return nil
		},
	}
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every stored event to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			events, err := a.store.All(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading events: %w", err)
			}
			for _, e := range events {
				fmt.Printf("%4d  %-40s %-30s %s (last seen %s)\n",
					e.ID, e.Title, e.Location,
					e.EventTime.Format("2006-01-02 15:04"),
					e.LastSeenAt.Format("2006-01-02 15:04"))
			}
			fmt.Printf("%d events\n", len(events))
			return nil
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
