// Package server exposes loaded catalogs over a read-only HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/s0up4200/qbtlang/filter"
	"github.com/s0up4200/qbtlang/translator"
)

// Options configures a Server.
type Options struct {
	Host string
	Port int
	// Mode is a gin mode: release, debug or test.
	Mode string
	// Presets maps names usable as ?preset= to filter expressions.
	Presets map[string]string
}

// Server serves lookups from an immutable translator bundle.
type Server struct {
	bundle  *translator.Bundle
	filters *filter.Manager
	opts    Options
	logger  zerolog.Logger
	engine  *gin.Engine
}

// New builds the router. Every preset is compiled here, so a broken
// expression fails before the server listens.
func New(bundle *translator.Bundle, opts Options, logger zerolog.Logger) (*Server, error) {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	filters := filter.NewManager(filter.WithCompiler(filter.NewExprCompiler(filter.WithCache(128))))
	if err := filters.RegisterFilters(opts.Presets); err != nil {
		_ = filters.Close(context.Background())
		return nil, fmt.Errorf("register presets: %w", err)
	}

	s := &Server{
		bundle:  bundle,
		filters: filters,
		opts:    opts,
		logger:  logger.With().Str("component", "server").Logger(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/healthz", s.health)

	api := engine.Group("/api/v1")
	api.GET("/languages", s.languages)
	api.GET("/presets", s.presets)
	api.GET("/translations", s.translations)
	api.GET("/:lang/translate", s.translate)
	api.GET("/:lang/stats", s.stats)
	api.GET("/:lang/messages", s.messages)

	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port)),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("Listening")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info().Msg("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.Close(shutdownCtx)
}

// Close stops the filter workers. Run calls it on shutdown.
func (s *Server) Close(ctx context.Context) error {
	return s.filters.Close(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	}
}
