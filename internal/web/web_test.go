package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bearduk/beard-events/internal/event"
	"github.com/bearduk/beard-events/internal/pipeline"
	"github.com/bearduk/beard-events/internal/scraper"
	"github.com/bearduk/beard-events/internal/store"
)

type staticFetcher struct{ text string }

func (f *staticFetcher) Fetch(context.Context) (*scraper.Snapshot, error) {
	return scraper.NewSnapshotFromText(f.text, "https://www.facebook.com/bearduk/events"), nil
}

var testNow = time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, pageText string) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	pipe := pipeline.New(&staticFetcher{text: pageText}, scraper.New(), st, zap.NewNop())
	srv := NewServer(st, pipe, zap.NewNop())
	srv.now = func() time.Time { return testNow }
	return srv, st
}

func seedEvents(t *testing.T, st *store.Store, n int) {
	t.Helper()
	batch := make([]event.RawEvent, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, event.RawEvent{
			DateText:     fmt.Sprintf("Fri, %d Dec at 20:00", i+1),
			Title:        fmt.Sprintf("BEARD @ Venue %d", i+1),
			LocationText: "Southsea",
			SourceURL:    "https://www.facebook.com/bearduk/events",
		})
	}
	if _, err := st.Upsert(context.Background(), batch, testNow); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHandleHome_CapsAtSix(t *testing.T) {
	srv, st := newTestServer(t, "")
	seedEvents(t, st, 8)

	w := doRequest(t, srv, http.MethodGet, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", w.Code)
	}

	var body struct {
		UpcomingEvents []event.Annotated `json:"upcoming_events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(body.UpcomingEvents) != HomePageLimit {
		t.Errorf("home view returned %d events, want %d", len(body.UpcomingEvents), HomePageLimit)
	}
	if body.UpcomingEvents[0].Badge == "" || body.UpcomingEvents[0].DisplayDate == "" {
		t.Error("home view events must carry display annotations")
	}
	if body.UpcomingEvents[0].Title != "BEARD @ Venue 1" {
		t.Errorf("first event = %q, want earliest first", body.UpcomingEvents[0].Title)
	}
}

func TestHandleEventsJSON(t *testing.T) {
	srv, st := newTestServer(t, "")
	seedEvents(t, st, 8)

	w := doRequest(t, srv, http.MethodGet, "/events.json")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /events.json status = %d", w.Code)
	}

	var body struct {
		Events []event.Event `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	// The JSON feed is uncapped.
	if len(body.Events) != 8 {
		t.Errorf("feed returned %d events, want 8", len(body.Events))
	}
	if body.Events[0].SourceURL == "" || body.Events[0].DateText == "" {
		t.Error("feed must expose all stored fields")
	}
}

func TestHandleUpdate(t *testing.T) {
	page := `Fri, 28 Nov at 21:00 GMT
BEARD @ The Vaults
The Vaults, Southsea`
	srv, st := newTestServer(t, page)

	w := doRequest(t, srv, http.MethodPost, "/update_events")
	if w.Code != http.StatusOK {
		t.Fatalf("POST /update_events status = %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Inserted int `json:"inserted"`
		Updated  int `json:"updated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", body.Inserted)
	}

	events, err := st.LoadUpcoming(context.Background(), testNow)
	if err != nil {
		t.Fatalf("LoadUpcoming() error: %v", err)
	}
	if len(events) != 1 || events[0].Title != "BEARD @ The Vaults" {
		t.Errorf("stored events after manual run = %+v", events)
	}
}

func TestHandleDiagnostics(t *testing.T) {
	srv, st := newTestServer(t, "")
	seedEvents(t, st, 3)

	w := doRequest(t, srv, http.MethodGet, "/diagnostics")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /diagnostics status = %d", w.Code)
	}

	var body store.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.TotalEvents != 3 || body.SeenWithinRefresh != 3 {
		t.Errorf("diagnostics counts = %d/%d, want 3/3", body.TotalEvents, body.SeenWithinRefresh)
	}
	if body.RetentionDays != 30 || body.RefreshIntervalHours != 6 {
		t.Errorf("diagnostics constants = %dd/%dh", body.RetentionDays, body.RefreshIntervalHours)
	}
	if len(body.Recent) != 3 {
		t.Errorf("diagnostics recent = %d entries, want 3", len(body.Recent))
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t, "")
	w := doRequest(t, srv, http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d", w.Code)
	}
}
