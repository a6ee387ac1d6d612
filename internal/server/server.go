// Package server exposes extraction and the polled placements over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/acavemancodes/Snistplacements/internal/extractor"
	"github.com/acavemancodes/Snistplacements/internal/scheduler"
	"github.com/acavemancodes/Snistplacements/internal/types"
)

// DefaultMaxBatch bounds the emails accepted by one extract request.
const DefaultMaxBatch = 500

type Options struct {
	Analyzer  scheduler.Analyzer
	Extractor *extractor.Extractor // for /api/v1/explain; optional
	Store     *scheduler.Store
	Gatherer  prometheus.Gatherer // nil serves no /metrics
	Logger    *zap.Logger
	MaxBatch  int
}

type Server struct {
	engine *gin.Engine
	opts   Options
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = scheduler.NewStore()
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = DefaultMaxBatch
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger))
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(config))

	s := &Server{engine: r, opts: opts}

	r.GET("/health", s.health)
	r.GET("/api/placements", s.placements)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	{
		api.POST("/extract", s.extract)
		if opts.Extractor != nil {
			api.POST("/explain", s.explain)
		}
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.opts.Logger.Info("server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// placements serves the last polled snapshot as a bare array.
func (s *Server) placements(c *gin.Context) {
	snap := s.opts.Store.Snapshot()
	if !snap.UpdatedAt.IsZero() {
		c.Header("X-Updated-At", snap.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if snap.Error != "" {
		c.Header("X-Poll-Error", snap.Error)
	}
	c.JSON(http.StatusOK, snap.Postings)
}

type extractRequest struct {
	Emails []types.Email `json:"emails" binding:"required"`
}

type extractResponse struct {
	Placements []types.JobPosting `json:"placements"`
	Count      int                `json:"count"`
}

func (s *Server) extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	if len(req.Emails) > s.opts.MaxBatch {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("batch of %d emails exceeds limit %d", len(req.Emails), s.opts.MaxBatch),
		})
		return
	}

	postings, err := s.opts.Analyzer.AnalyzeEmails(c.Request.Context(), req.Emails)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if postings == nil {
		postings = []types.JobPosting{}
	}
	c.JSON(http.StatusOK, extractResponse{Placements: postings, Count: len(postings)})
}

func (s *Server) explain(c *gin.Context) {
	var email types.Email
	if err := c.ShouldBindJSON(&email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	posting, ok := s.opts.Extractor.ExtractPosting(email)
	resp := gin.H{"candidates": s.opts.Extractor.Explain(email)}
	if ok {
		resp["posting"] = posting
	}
	c.JSON(http.StatusOK, resp)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
