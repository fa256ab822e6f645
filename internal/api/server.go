package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"reelsmith/internal/alignment"
	"reelsmith/internal/keywords"
	"reelsmith/internal/logging"
	"reelsmith/internal/runs"
	"reelsmith/internal/stage"
)

// RunStore is the subset of the run ledger the API reads.
type RunStore interface {
	GetByID(ctx context.Context, id int64) (*runs.Run, error)
	List(ctx context.Context, statuses ...runs.Status) ([]*runs.Run, error)
	Stats(ctx context.Context) (map[runs.Status]int, error)
}

// HealthSource reports stage readiness.
type HealthSource interface {
	Health(ctx context.Context) []stage.Health
}

// Server serves the HTTP API.
type Server struct {
	store  RunStore
	health HealthSource
	logger *slog.Logger
	router *gin.Engine
}

// NewServer builds the router. health may be nil.
func NewServer(store RunStore, health HealthSource, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		store:  store,
		health: health,
		logger: logging.NewComponentLogger(logger, "api"),
		router: gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.router.GET("/health", s.getHealth)
	v1 := s.router.Group("/v1")
	v1.POST("/align", s.postAlign)
	v1.GET("/runs", s.listRuns)
	v1.GET("/runs/:id", s.getRun)
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on bind until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, bind string) error {
	srv := &http.Server{
		Addr:              bind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", logging.String("bind", bind))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("api request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) getHealth(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Runs: map[string]int{}}
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	for status, count := range stats {
		resp.Runs[string(status)] = count
	}
	resp.Summary = FromSummary(runs.Summarize(stats))
	if s.health != nil {
		resp.Stages = FromStageHealth(s.health.Health(c.Request.Context()))
		for _, h := range resp.Stages {
			if !h.Ready {
				resp.Status = "degraded"
				break
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) postAlign(c *gin.Context) {
	var req AlignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := keywords.Validate(req.Keywords); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mediaRoot := req.MediaRoot
	if mediaRoot == "" {
		mediaRoot = "media"
	}
	segments, err := alignment.Build(req.Transcript.Words, req.Keywords, mediaRoot, s.logger)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if segments == nil {
		segments = []alignment.Segment{}
	}
	c.JSON(http.StatusOK, AlignResponse{Timeline: segments, Dropped: len(req.Keywords) - len(segments)})
}

func (s *Server) listRuns(c *gin.Context) {
	var statuses []runs.Status
	for _, raw := range c.QueryArray("status") {
		status, ok := runs.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + strconv.Quote(raw)})
			return
		}
		statuses = append(statuses, status)
	}
	list, err := s.store.List(c.Request.Context(), statuses...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	out := make([]Run, 0, len(list))
	for _, r := range list {
		out = append(out, FromRun(r))
	}
	sorted := SortRunsNewestFirst(out)
	if sorted == nil {
		sorted = []Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": sorted})
}

func (s *Server) getRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}
	run, err := s.store.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, FromRun(run))
}
