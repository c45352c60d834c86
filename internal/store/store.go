package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/bearduk/beard-events/internal/event"
)

const (
	// Retention bounds storage growth: rows not re-observed within this
	// window are deleted on the next upsert, even when their event date is
	// still in the future. Cancelled gigs disappear from the source page
	// long before their date passes.
	Retention = 30 * 24 * time.Hour

	// RefreshInterval is the staleness gate for re-running extraction,
	// bounding load on the source site.
	RefreshInterval = 6 * time.Hour
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
  id               INTEGER PRIMARY KEY AUTOINCREMENT,
  title            TEXT    NOT NULL,
  location         TEXT    NOT NULL DEFAULT 'TBA',
  date_text        TEXT    NOT NULL,
  event_ts         INTEGER NOT NULL,
  source_url       TEXT    NOT NULL,
  attendance_count INTEGER NOT NULL DEFAULT 0,
  dup_key          TEXT    NOT NULL,
  last_seen_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_dup_key      ON events(dup_key);
CREATE INDEX IF NOT EXISTS idx_events_event_ts     ON events(event_ts);
CREATE INDEX IF NOT EXISTS idx_events_last_seen_at ON events(last_seen_at);
`

// Store persists canonical events in a SQLite database.
type Store struct {
	db *sqlx.DB

	// runMu serializes upsert batches: the per-candidate read-check-write
	// sequence is not atomic, so overlapping scheduled and manual runs must
	// not interleave.
	runMu sync.Mutex
}

// Open opens (creating if needed) the events database at path. Pass
// ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		// WAL + busy timeout to avoid "database is locked"
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: SQLite allows a single writer, and a pooled second
	// connection to a :memory: database would see a different database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type row struct {
	ID              int64  `db:"id"`
	Title           string `db:"title"`
	Location        string `db:"location"`
	DateText        string `db:"date_text"`
	EventTS         int64  `db:"event_ts"`
	SourceURL       string `db:"source_url"`
	AttendanceCount int    `db:"attendance_count"`
	DupKey          string `db:"dup_key"`
	LastSeenAt      int64  `db:"last_seen_at"`
}

func (r row) toEvent() event.Event {
	return event.Event{
		ID:              r.ID,
		Title:           r.Title,
		Location:        r.Location,
		DateText:        r.DateText,
		EventTime:       time.Unix(r.EventTS, 0).UTC(),
		SourceURL:       r.SourceURL,
		AttendanceCount: r.AttendanceCount,
		LastSeenAt:      time.Unix(r.LastSeenAt, 0).UTC(),
	}
}

// UpsertResult reports what one batch changed, for the manual trigger.
type UpsertResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Pruned   int `json:"pruned"`
}

// Upsert merges a batch of extraction candidates into the canonical
// collection. A candidate whose key matches a stored row refreshes that row
// in place, last write wins; an unmatched candidate inserts a new row. The
// batch finishes with the retention sweep regardless of match activity.
func (s *Store) Upsert(ctx context.Context, candidates []event.RawEvent, now time.Time) (UpsertResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	var res UpsertResult
	for _, c := range candidates {
		ts := event.Normalize(c.DateText, now).Unix()
		key := event.KeyForRaw(c)

		var id int64
		err := s.db.GetContext(ctx, &id, `SELECT id FROM events WHERE dup_key = ? LIMIT 1`, key)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = s.db.ExecContext(ctx,
				`INSERT INTO events (title, location, date_text, event_ts, source_url, dup_key, last_seen_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				c.Title, c.Location(), c.DateText, ts, c.SourceURL, key, now.Unix())
			if err != nil {
				return res, fmt.Errorf("inserting event %q: %w", c.Title, err)
			}
			res.Inserted++
		case err != nil:
			return res, fmt.Errorf("looking up event %q: %w", c.Title, err)
		default:
			_, err = s.db.ExecContext(ctx,
				`UPDATE events
				 SET title = ?, location = ?, date_text = ?, event_ts = ?, source_url = ?, last_seen_at = ?
				 WHERE id = ?`,
				c.Title, c.Location(), c.DateText, ts, c.SourceURL, now.Unix(), id)
			if err != nil {
				return res, fmt.Errorf("updating event %q: %w", c.Title, err)
			}
			res.Updated++
		}
	}

	swept, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE last_seen_at < ?`, now.Add(-Retention).Unix())
	if err != nil {
		return res, fmt.Errorf("sweeping stale events: %w", err)
	}
	if n, err := swept.RowsAffected(); err == nil {
		res.Pruned = int(n)
	}
	return res, nil
}

// LoadUpcoming returns every stored event strictly after now, ordered by
// event time ascending. Rows that look like duplicates of the same gig
// despite distinct keys collapse at read time: highest attendance count wins,
// ties broken by lowest id. That rule papers over key-derivation drift across
// schema versions and should become unnecessary once keys are stable.
func (s *Store) LoadUpcoming(ctx context.Context, now time.Time) ([]event.Event, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, title, location, date_text, event_ts, source_url, attendance_count, dup_key, last_seen_at
		 FROM events WHERE event_ts > ? ORDER BY event_ts ASC, id ASC`, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("loading upcoming events: %w", err)
	}

	type slot struct{ idx int }
	best := make(map[string]slot)
	out := make([]event.Event, 0, len(rows))
	for _, r := range rows {
		k := r.Title + "|" + r.DateText + "|" + r.Location
		if sl, ok := best[k]; ok {
			held := out[sl.idx]
			if r.AttendanceCount > held.AttendanceCount ||
				(r.AttendanceCount == held.AttendanceCount && r.ID < held.ID) {
				out[sl.idx] = r.toEvent()
			}
			continue
		}
		best[k] = slot{idx: len(out)}
		out = append(out, r.toEvent())
	}
	return out, nil
}

// All returns every stored event, past ones included, ordered by event time.
// Diagnostic use only; display paths go through LoadUpcoming.
func (s *Store) All(ctx context.Context) ([]event.Event, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, title, location, date_text, event_ts, source_url, attendance_count, dup_key, last_seen_at
		 FROM events ORDER BY event_ts ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("loading all events: %w", err)
	}
	out := make([]event.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEvent())
	}
	return out, nil
}

// Stale reports whether no event has been observed within the refresh
// interval, meaning the caller should re-run extraction.
func (s *Store) Stale(ctx context.Context, now time.Time) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM events WHERE last_seen_at > ?`, now.Add(-RefreshInterval).Unix())
	if err != nil {
		return false, fmt.Errorf("checking staleness: %w", err)
	}
	return n == 0, nil
}

// Stats is the read-only diagnostics view of the collection.
type Stats struct {
	TotalEvents          int           `json:"total_events"`
	SeenWithinRefresh    int           `json:"seen_within_refresh"`
	RetentionDays        int           `json:"retention_days"`
	RefreshIntervalHours int           `json:"refresh_interval_hours"`
	Recent               []event.Event `json:"recent"`
}

// Stats reports collection counts, the interval constants, and the n most
// recently observed events.
func (s *Store) Stats(ctx context.Context, now time.Time, n int) (Stats, error) {
	st := Stats{
		RetentionDays:        int(Retention / (24 * time.Hour)),
		RefreshIntervalHours: int(RefreshInterval / time.Hour),
	}

	if err := s.db.GetContext(ctx, &st.TotalEvents, `SELECT COUNT(*) FROM events`); err != nil {
		return st, fmt.Errorf("counting events: %w", err)
	}
	err := s.db.GetContext(ctx, &st.SeenWithinRefresh,
		`SELECT COUNT(*) FROM events WHERE last_seen_at > ?`, now.Add(-RefreshInterval).Unix())
	if err != nil {
		return st, fmt.Errorf("counting recent events: %w", err)
	}

	var rows []row
	err = s.db.SelectContext(ctx, &rows,
		`SELECT id, title, location, date_text, event_ts, source_url, attendance_count, dup_key, last_seen_at
		 FROM events ORDER BY last_seen_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return st, fmt.Errorf("loading recent events: %w", err)
	}
	st.Recent = make([]event.Event, 0, len(rows))
	for _, r := range rows {
		st.Recent = append(st.Recent, r.toEvent())
	}
	return st, nil
}

// SetAttendance records an attendance signal for a stored event. The count
// only feeds the read-time dedup preference; it is not displayed.
func (s *Store) SetAttendance(ctx context.Context, id int64, count int) error {
	if count < 0 {
		count = 0
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE events SET attendance_count = ? WHERE id = ?`, count, id); err != nil {
		return fmt.Errorf("setting attendance: %w", err)
	}
	return nil
}
