// Package server exposes conversions over HTTP: uploads start jobs, progress
// is streamed as Server-Sent Events and chunks are downloaded one by one.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/ukaji3/xlsplit-go/internal/config"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit"
)

// Server is the HTTP transport.
type Server struct {
	router    chi.Router
	store     *Store
	log       logrus.FieldLogger
	cfg       config.ServerConfig
	chunkSize int
	maxUpload int64
}

// New creates a server from the loaded configuration.
func New(cfg *config.Config, log logrus.FieldLogger) (*Server, error) {
	opts := xlsplit.DefaultOptions()
	opts.ChunkCapacity = cfg.Conversion.ChunkSize
	opts.BatchSize = cfg.Conversion.BatchSize

	store, err := NewStore(cfg.Server.WorkDir, opts, log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    chi.NewRouter(),
		store:     store,
		log:       log,
		cfg:       cfg.Server,
		chunkSize: cfg.Conversion.ChunkSize,
		maxUpload: cfg.Server.MaxUploadBytes,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/sheets", s.handleListSheets)

	s.router.Route("/conversions", func(r chi.Router) {
		r.Post("/", s.handleStartConversion)
		r.Get("/{id}", s.handleGetConversion)
		r.Delete("/{id}", s.handleDeleteConversion)
		r.Get("/{id}/events", s.handleEvents)
		r.Get("/{id}/chunks/{index}", s.handleDownloadChunk)
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the job store.
func (s *Server) Store() *Store {
	return s.store
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully and cancels running jobs.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.store.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweep periodically removes finished jobs past their TTL.
func (s *Server) sweep(ctx context.Context) {
	interval := s.cfg.JobTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.store.Sweep(now, s.cfg.JobTTL); n > 0 {
				s.log.WithField("count", n).Info("expired jobs removed")
			}
		}
	}
}
