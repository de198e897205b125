// Package server exposes the recommender over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"yashubustudio/hobbyfinder/hobby"
	"yashubustudio/hobbyfinder/internal/config"
)

// Recommender is the part of hobby.Service the handlers use.
type Recommender interface {
	Recommend(ctx context.Context, req hobby.RecommendRequest) hobby.Recommendation
	Browse() []hobby.Result
	Search(ctx context.Context, text string, k int) []hobby.SearchHit
	Health() hobby.Health
}

// Server owns the router and the net/http server.
type Server struct {
	cfg    config.ServerConfig
	svc    Recommender
	log    zerolog.Logger
	router http.Handler
}

// New builds the router for svc.
func New(svc Recommender, cfg config.ServerConfig, logger zerolog.Logger) *Server {
	s := &Server{
		cfg: cfg,
		svc: svc,
		log: logger.With().Str("component", "http").Logger(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
