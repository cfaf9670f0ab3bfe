package websocket_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-solo/transport/rest"
	wstransport "github.com/rocketscienceinc/tictactoe-solo/transport/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type nopSnapshotRepo struct{}

func (nopSnapshotRepo) Save(context.Context, entity.Snapshot) error { return nil }

func (nopSnapshotRepo) DeleteByID(context.Context, string) error { return nil }

type centerBot struct{}

func (centerBot) ChooseCell(entity.Board, entity.Cell, entity.Difficulty) (int, error) { return 4, nil }

type queueScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (that *queueScheduler) AfterFunc(_ time.Duration, f func()) func() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.tasks = append(that.tasks, f)

	return func() bool { return true }
}

func (that *queueScheduler) run() {
	that.mu.Lock()
	tasks := that.tasks
	that.tasks = nil
	that.mu.Unlock()

	for _, task := range tasks {
		task()
	}
}

func TestHandler_StreamsSnapshots(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given: a single player session served over HTTP
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scheduler := &queueScheduler{}
	sessions := usecase.NewSessionManager(logger, nopSnapshotRepo{}, centerBot{}, usecase.Options{
		Mode:       entity.ModePvC,
		Difficulty: entity.DifficultyHard,
		Scheduler:  scheduler,
	})
	server := httptest.NewServer(rest.NewRouter(logger, sessions, wstransport.New(logger, sessions)))
	defer server.Close()

	created, err := sessions.CreateSession(ctx)
	require.NoError(t, err)

	// When: a client connects
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/sessions/" + created.SessionID + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// Then: the current snapshot arrives first
	var snapshot entity.Snapshot
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, created.SessionID, snapshot.SessionID)
	assert.Equal(t, entity.Board{}, snapshot.Board)

	// When: the human plays and the bot answers
	_, err = sessions.SelectCell(ctx, created.SessionID, 0)
	require.NoError(t, err)
	scheduler.run()

	// Then: both moves are pushed
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, entity.PlayerX, snapshot.Board[0])

	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, entity.PlayerO, snapshot.Board[4])
	assert.Equal(t, entity.PlayerX, snapshot.Turn)

	// When: the session is closed
	require.NoError(t, sessions.CloseSession(ctx, created.SessionID))

	// Then: the connection is closed normally
	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestHandler_UnknownSession(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := usecase.NewSessionManager(logger, nopSnapshotRepo{}, centerBot{}, usecase.Options{
		Mode:       entity.ModePvP,
		Difficulty: entity.DifficultyEasy,
	})
	server := httptest.NewServer(rest.NewRouter(logger, sessions, wstransport.New(logger, sessions)))
	defer server.Close()

	resp, err := http.Get(server.URL + "/sessions/missing/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// racingSessions - a bot move lands right after the handler reads the current snapshot.
type racingSessions struct {
	mu      sync.Mutex
	updates chan entity.Snapshot
}

func (that *racingSessions) GetSession(_ context.Context, sessionID string) (entity.Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.updates != nil {
		that.updates <- entity.Snapshot{SessionID: sessionID, Board: entity.Board{entity.PlayerX, 4: entity.PlayerO}, Turn: entity.PlayerX}
	}

	return entity.Snapshot{SessionID: sessionID, Board: entity.Board{entity.PlayerX}, Turn: entity.PlayerO}, nil
}

func (that *racingSessions) Subscribe(_ context.Context, sessionID string) (<-chan entity.Snapshot, func(), error) {
	if sessionID != "racing" {
		return nil, nil, apperror.ErrSessionNotFound
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.updates = make(chan entity.Snapshot, 1)

	return that.updates, func() {}, nil
}

func TestHandler_ChangeBeforeFirstFrame(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given: a session whose bot moves while the connection is being set up
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	router.Get("/sessions/{id}/ws", wstransport.New(logger, &racingSessions{}).ServeHTTP)
	server := httptest.NewServer(router)
	defer server.Close()

	// When: a client connects
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/sessions/racing/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// Then: the bot move follows the first frame
	var snapshot entity.Snapshot
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, entity.PlayerO, snapshot.Turn)

	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, entity.PlayerO, snapshot.Board[4])
	assert.Equal(t, entity.PlayerX, snapshot.Turn)
}
