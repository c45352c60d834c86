// Package web exposes the event listing over HTTP: the home view, the raw
// JSON feed, the manual refresh trigger, and read-only diagnostics.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bearduk/beard-events/internal/event"
	"github.com/bearduk/beard-events/internal/pipeline"
	"github.com/bearduk/beard-events/internal/store"
)

const (
	// HomePageLimit caps the home view to the next few gigs.
	HomePageLimit = 6

	// diagnosticsRecent is how many recently-seen events diagnostics shows.
	diagnosticsRecent = 10
)

// Server hosts the HTTP endpoints.
type Server struct {
	store *store.Store
	pipe  *pipeline.Pipeline
	log   *zap.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewServer wires the store and pipeline into a server.
func NewServer(st *store.Store, pipe *pipeline.Pipeline, log *zap.Logger) *Server {
	return &Server{
		store: st,
		pipe:  pipe,
		log:   log,
		now:   time.Now,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/", s.handleHome)
	r.GET("/events.json", s.handleEventsJSON)
	r.GET("/update_events", s.handleUpdate)
	r.POST("/update_events", s.handleUpdate)
	r.GET("/diagnostics", s.handleDiagnostics)
	r.GET("/healthz", s.handleHealth)
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// handleHome serves the home-page view: the next few upcoming events with
// their display annotations.
func (s *Server) handleHome(c *gin.Context) {
	now := s.now()
	events, err := s.store.LoadUpcoming(c.Request.Context(), now)
	if err != nil {
		s.log.Error("loading upcoming events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading events failed"})
		return
	}
	if len(events) > HomePageLimit {
		events = events[:HomePageLimit]
	}
	c.JSON(http.StatusOK, gin.H{
		"upcoming_events": event.Annotate(events, now),
	})
}

// handleEventsJSON serves the full upcoming set with every stored field.
func (s *Server) handleEventsJSON(c *gin.Context) {
	events, err := s.store.LoadUpcoming(c.Request.Context(), s.now())
	if err != nil {
		s.log.Error("loading upcoming events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading events failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// handleUpdate forces one pipeline run synchronously and reports what
// changed. Store failures surface here as an error message, unlike the
// scheduled path which swallows them until the next tick.
func (s *Server) handleUpdate(c *gin.Context) {
	res, err := s.pipe.Run(c.Request.Context(), s.now())
	if err != nil {
		s.log.Error("manual pipeline run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inserted": res.Inserted,
		"updated":  res.Updated,
		"pruned":   res.Pruned,
	})
}

// handleDiagnostics reports counts, the interval constants and the most
// recently seen events. Read-only, no side effects.
func (s *Server) handleDiagnostics(c *gin.Context) {
	st, err := s.store.Stats(c.Request.Context(), s.now(), diagnosticsRecent)
	if err != nil {
		s.log.Error("collecting stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "collecting stats failed"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
