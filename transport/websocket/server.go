package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeTimeout = 10 * time.Second

type sessionSubscriber interface {
	GetSession(ctx context.Context, sessionID string) (entity.Snapshot, error)
	Subscribe(ctx context.Context, sessionID string) (<-chan entity.Snapshot, func(), error)
}

// Handler - streams the snapshots of one session over a WebSocket, starting with the current one.
// Client messages are not read; moves go through the REST routes.
type Handler struct {
	logger   *slog.Logger
	sessions sessionSubscriber
}

func New(logger *slog.Logger, sessions sessionSubscriber) *Handler {
	return &Handler{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
	}
}

func (that *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	log := that.logger.With("method", "ServeHTTP", "session", sessionID)

	// subscribe first, so a change landing before the first frame is still pushed
	updates, cancel, err := that.sessions.Subscribe(r.Context(), sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to subscribe", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer cancel()

	snapshot, err := that.sessions.GetSession(r.Context(), sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Debug("failed to accept websocket", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	if err = that.write(ctx, conn, snapshot); err != nil {
		log.Debug("failed to write snapshot", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-updates:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}

			if err = that.write(ctx, conn, snapshot); err != nil {
				log.Debug("failed to write snapshot", "error", err)
				return
			}
		}
	}
}

func (that *Handler) write(ctx context.Context, conn *websocket.Conn, snapshot entity.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return wsjson.Write(ctx, conn, snapshot)
}
