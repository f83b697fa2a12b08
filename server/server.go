package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/chaos-io/invisicloak/cloak"
	"github.com/chaos-io/invisicloak/config"
)

type Server struct {
	cfg      config.Config
	pipeline *cloak.Pipeline
	store    *Store
	cron     *cron.Cron
	engine   *gin.Engine
}

func New(cfg config.Config, pipeline *cloak.Pipeline) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		store:    NewStore(),
		cron:     cron.New(),
	}

	if _, err := s.cron.AddFunc(cfg.SweepSpec, s.sweep); err != nil {
		return nil, fmt.Errorf("schedule session sweep %q: %w", cfg.SweepSpec, err)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), requestLogger(), limitBody(cfg.MaxUploadBytes))
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.store.Len()})
	})

	v1 := s.engine.Group("/api/v1")
	v1.POST("/sessions", s.createSession)
	v1.DELETE("/sessions/:id", s.deleteSession)
	v1.PUT("/sessions/:id/background", s.captureBackground)
	v1.DELETE("/sessions/:id/background", s.clearBackground)
	v1.POST("/sessions/:id/cloak", s.cloak)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 启动定时清理和 HTTP 服务，ctx 结束后优雅退出
func (s *Server) Run(ctx context.Context) error {
	s.cron.Start()
	defer func() {
		<-s.cron.Stop().Done()
	}()

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) sweep() {
	if n := s.store.Sweep(s.cfg.SessionTTL); n > 0 {
		slog.Info("swept idle sessions", "count", n, "remaining", s.store.Len())
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
