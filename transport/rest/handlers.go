package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

type sessionManager interface {
	CreateSession(ctx context.Context) (entity.Snapshot, error)
	GetSession(ctx context.Context, sessionID string) (entity.Snapshot, error)
	CloseSession(ctx context.Context, sessionID string) error

	SelectCell(ctx context.Context, sessionID string, cell int) (entity.Snapshot, error)
	Restart(ctx context.Context, sessionID string) (entity.Snapshot, error)
	NewGame(ctx context.Context, sessionID string) (entity.Snapshot, error)
	SwitchMode(ctx context.Context, sessionID string, mode entity.Mode) (entity.Snapshot, error)
	SetDifficulty(ctx context.Context, sessionID string, difficulty entity.Difficulty) (entity.Snapshot, error)
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type difficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger   *slog.Logger
	sessions sessionManager
}

func newHandlers(logger *slog.Logger, sessions sessionManager) *handlers {
	return &handlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
	}
}

func (that *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.CreateSession(r.Context())
	if err != nil {
		that.writeError(w, "createSession", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, snapshot)
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, "getSession", snapshot, err)
}

func (that *handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.CloseSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "closeSession", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// selectCell - a move that the game ignores still answers 200 with the unchanged snapshot.
func (that *handlers) selectCell(w http.ResponseWriter, r *http.Request) {
	cell, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell index must be a number"})
		return
	}

	snapshot, err := that.sessions.SelectCell(r.Context(), chi.URLParam(r, "id"), cell)
	that.respond(w, "selectCell", snapshot, err)
}

func (that *handlers) restart(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.Restart(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, "restart", snapshot, err)
}

func (that *handlers) newGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.NewGame(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, "newGame", snapshot, err)
}

func (that *handlers) switchMode(w http.ResponseWriter, r *http.Request) {
	var request modeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	mode, err := entity.ParseMode(request.Mode)
	if err != nil {
		that.writeError(w, "switchMode", err)
		return
	}

	snapshot, err := that.sessions.SwitchMode(r.Context(), chi.URLParam(r, "id"), mode)
	that.respond(w, "switchMode", snapshot, err)
}

func (that *handlers) setDifficulty(w http.ResponseWriter, r *http.Request) {
	var request difficultyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	difficulty, err := entity.ParseDifficulty(request.Difficulty)
	if err != nil {
		that.writeError(w, "setDifficulty", err)
		return
	}

	snapshot, err := that.sessions.SetDifficulty(r.Context(), chi.URLParam(r, "id"), difficulty)
	that.respond(w, "setDifficulty", snapshot, err)
}

func (that *handlers) respond(w http.ResponseWriter, method string, snapshot entity.Snapshot, err error) {
	if err != nil {
		that.writeError(w, method, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrSessionNotFound.Error()})
	case errors.Is(err, apperror.ErrUnknownMode), errors.Is(err, apperror.ErrUnknownDifficulty):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
