// Package api exposes the community HTTP API: public contest reads plus
// key-protected admin and economy endpoints.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kingmyco/mycobot/internal/config"
	"github.com/kingmyco/mycobot/internal/contest"
	"github.com/kingmyco/mycobot/internal/database"
)

// Server serves the HTTP API.
type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	store   database.Store
	ledger  *contest.Ledger
	archive *contest.Archive
}

// NewServer wires the HTTP API against the contest engine and store.
func NewServer(cfg config.APIConfig, store database.Store, ledger *contest.Ledger, archive *contest.Archive, log *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		log:     log.With("component", "api"),
		store:   store,
		ledger:  ledger,
		archive: archive,
	}
}

// Router builds the route tree. Public endpoints are readable without
// credentials; everything under requireAPIKey needs the shared secret.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/stats", s.handleStats)
		r.Get("/winners", s.handleWinners)
		r.Get("/champions", s.handleChampions)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAPIKey)

			r.Post("/admin/reset-daily-stats", s.handleResetDailyStats)

			r.Get("/users/{userID}/spores", s.handleUserSpores)
			r.Get("/users/{userID}/rank", s.handleUserRank)
			r.Get("/users/{userID}/quests", s.handleUserQuests)

			r.Post("/quests", s.handleCreateQuest)
			r.Post("/quests/{questID}/complete", s.handleCompleteQuest)

			r.Post("/spores/award", s.handleAwardSpores)

			r.Post("/wallet/nonce", s.handleWalletNonce)
			r.Post("/wallet/verify", s.handleWalletVerify)
		})
	})

	return r
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("API server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("API server shutdown failed", "error", err)
			return err
		}
		s.log.Info("API server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
