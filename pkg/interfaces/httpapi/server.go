package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/restock/pkg/application/services"
	"github.com/vsinha/restock/pkg/infrastructure/config"
	"github.com/vsinha/restock/pkg/infrastructure/eventbus"
	"github.com/vsinha/restock/pkg/infrastructure/metrics"
)

// RouterOption configures NewRouter
type RouterOption func(*routerOptions)

type routerOptions struct {
	recorder *metrics.Recorder
	store    eventbus.EventStore
	logger   *slog.Logger
}

// WithRecorder counts every request and exposes /metrics
func WithRecorder(recorder *metrics.Recorder) RouterOption {
	return func(o *routerOptions) {
		o.recorder = recorder
	}
}

// WithEventStore exposes recent planning events on /events
func WithEventStore(store eventbus.EventStore) RouterOption {
	return func(o *routerOptions) {
		o.store = store
	}
}

// WithLogger sets the logger used by the middleware and every handler
func WithLogger(logger *slog.Logger) RouterOption {
	return func(o *routerOptions) {
		o.logger = logger
	}
}

// NewRouter builds the gin engine serving the planning API
func NewRouter(svc *services.PlanningService, opts ...RouterOption) *gin.Engine {
	options := routerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(options.logger))
	if options.recorder != nil {
		router.Use(requestMetrics(options.recorder))
		router.GET("/metrics", gin.WrapH(options.recorder.Handler()))
	}

	handlers := NewHandlers(svc, options.logger)
	if options.store != nil {
		handlers.WithEventStore(options.store)
	}
	RegisterRoutes(router.Group("/"), handlers)
	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", c.Writer.Header().Get("X-Request-ID")),
		)
	}
}

func requestMetrics(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		recorder.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// Server runs the planning API until its context is cancelled
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// NewServer creates a server listening on cfg.Addr
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", slog.Duration("timeout", s.shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
