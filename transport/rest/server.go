package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - mounts the ping route, the session routes and, when given, the live updates handler.
func NewRouter(logger *slog.Logger, sessions sessionManager, updates http.Handler) http.Handler {
	handlers := newHandlers(logger, sessions)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/ping", pingHandler)

	router.Route("/sessions", func(r chi.Router) {
		r.Post("/", handlers.createSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.getSession)
			r.Delete("/", handlers.closeSession)
			r.Post("/cells/{index}", handlers.selectCell)
			r.Post("/restart", handlers.restart)
			r.Post("/new-game", handlers.newGame)
			r.Put("/mode", handlers.switchMode)
			r.Put("/difficulty", handlers.setDifficulty)

			if updates != nil {
				r.Get("/ws", updates.ServeHTTP)
			}
		})
	})

	return router
}

// Start - serves handler on port until ctx is done, then shuts down gracefully.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		return nil
	}
}
