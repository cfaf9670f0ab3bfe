package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

const (
	saveTimeout      = 5 * time.Second
	subscriberBuffer = 8
)

type snapshotRepo interface {
	Save(ctx context.Context, snapshot entity.Snapshot) error
	DeleteByID(ctx context.Context, sessionID string) error
}

type botService interface {
	ChooseCell(board entity.Board, mark entity.Cell, difficulty entity.Difficulty) (int, error)
}

type Options struct {
	Mode          entity.Mode
	Difficulty    entity.Difficulty
	OpponentDelay time.Duration
	IdleTimeout   time.Duration

	// Scheduler - is handed to every controller; nil means real timers.
	Scheduler tictactoe.Scheduler
}

type session struct {
	id         string
	controller *tictactoe.GameController
	lastSeen   atomic.Int64

	mu          sync.Mutex
	subscribers map[chan entity.Snapshot]struct{}
}

func (that *session) touch(now time.Time) {
	that.lastSeen.Store(now.UnixNano())
}

// SessionManager - keeps independent game sessions, one controller each.
type SessionManager struct {
	logger       *slog.Logger
	snapshotRepo snapshotRepo
	botService   botService
	opts         Options
	now          func() time.Time

	sessions *xsync.MapOf[string, *session]
}

func NewSessionManager(logger *slog.Logger, snapshotRepo snapshotRepo, botService botService, opts Options) *SessionManager {
	return &SessionManager{
		logger:       logger.With("component", "sessionManager"),
		snapshotRepo: snapshotRepo,
		botService:   botService,
		opts:         opts,
		now:          time.Now,

		sessions: xsync.NewMapOf[string, *session](),
	}
}

func (that *SessionManager) CreateSession(ctx context.Context) (entity.Snapshot, error) {
	sess := &session{
		id:          pkg.GenerateSessionID(),
		subscribers: make(map[chan entity.Snapshot]struct{}),
	}
	sess.touch(that.now())

	controller, err := tictactoe.NewGameController(that.logger.With("session", sess.id), that.botService, tictactoe.Options{
		Mode:          that.opts.Mode,
		Difficulty:    that.opts.Difficulty,
		OpponentDelay: that.opts.OpponentDelay,
		Scheduler:     that.opts.Scheduler,
		OnChange: func(snapshot entity.Snapshot) {
			that.publish(sess, snapshot)
		},
	})
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to create game controller: %w", err)
	}

	sess.controller = controller

	snapshot := that.withID(sess, controller.Snapshot())
	if err = that.snapshotRepo.Save(ctx, snapshot); err != nil {
		controller.Stop()
		return entity.Snapshot{}, fmt.Errorf("failed to save session: %w", err)
	}

	that.sessions.Store(sess.id, sess)
	that.logger.Info("session created", "session", sess.id)

	return snapshot, nil
}

func (that *SessionManager) GetSession(_ context.Context, sessionID string) (entity.Snapshot, error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	return that.withID(sess, sess.controller.Snapshot()), nil
}

// SelectCell - forwards a human move. Ignored moves are not errors; the current snapshot is returned either way.
func (that *SessionManager) SelectCell(_ context.Context, sessionID string, cell int) (entity.Snapshot, error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	sess.controller.OnCellSelected(cell)

	return that.withID(sess, sess.controller.Snapshot()), nil
}

func (that *SessionManager) Restart(_ context.Context, sessionID string) (entity.Snapshot, error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	sess.controller.Restart()

	return that.withID(sess, sess.controller.Snapshot()), nil
}

func (that *SessionManager) NewGame(_ context.Context, sessionID string) (entity.Snapshot, error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	sess.controller.NewGame()

	return that.withID(sess, sess.controller.Snapshot()), nil
}

func (that *SessionManager) SwitchMode(_ context.Context, sessionID string, mode entity.Mode) (entity.Snapshot, error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	if err = sess.controller.SwitchMode(mode); err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to switch mode: %w", err)
	}

	return that.withID(sess, sess.controller.Snapshot()), nil
}

func (that *SessionManager) SetDifficulty(_ context.Context, sessionID string, difficulty entity.Difficulty) (entity.Snapshot, error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	if err = sess.controller.SetDifficulty(difficulty); err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to set difficulty: %w", err)
	}

	return that.withID(sess, sess.controller.Snapshot()), nil
}

// Subscribe - streams snapshots of a session until cancel is called or the session closes.
func (that *SessionManager) Subscribe(_ context.Context, sessionID string) (<-chan entity.Snapshot, func(), error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan entity.Snapshot, subscriberBuffer)

	sess.mu.Lock()
	if sess.subscribers == nil {
		sess.mu.Unlock()
		close(ch)

		return ch, func() {}, nil
	}
	sess.subscribers[ch] = struct{}{}
	sess.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			sess.mu.Lock()
			defer sess.mu.Unlock()

			if _, ok := sess.subscribers[ch]; ok {
				delete(sess.subscribers, ch)
				close(ch)
			}
		})
	}

	return ch, cancel, nil
}

func (that *SessionManager) CloseSession(ctx context.Context, sessionID string) error {
	sess, ok := that.sessions.LoadAndDelete(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, sessionID)
	}

	that.closeSession(ctx, sess)

	return nil
}

// CloseIdle - closes sessions untouched for longer than the idle timeout and returns how many were closed.
func (that *SessionManager) CloseIdle(ctx context.Context) int {
	if that.opts.IdleTimeout <= 0 {
		return 0
	}

	deadline := that.now().Add(-that.opts.IdleTimeout).UnixNano()

	var idle []*session
	that.sessions.Range(func(id string, sess *session) bool {
		if sess.lastSeen.Load() < deadline {
			if removed, ok := that.sessions.LoadAndDelete(id); ok {
				idle = append(idle, removed)
			}
		}

		return true
	})

	for _, sess := range idle {
		that.closeSession(ctx, sess)
	}

	return len(idle)
}

// RunJanitor - closes idle sessions periodically until ctx is done.
func (that *SessionManager) RunJanitor(ctx context.Context, interval time.Duration) error {
	log := that.logger.With("method", "RunJanitor")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if closed := that.CloseIdle(ctx); closed > 0 {
				log.Info("idle sessions closed", "count", closed)
			}
		}
	}
}

// Shutdown - closes every open session.
func (that *SessionManager) Shutdown(ctx context.Context) {
	that.sessions.Range(func(id string, _ *session) bool {
		if sess, ok := that.sessions.LoadAndDelete(id); ok {
			that.closeSession(ctx, sess)
		}

		return true
	})
}

func (that *SessionManager) Len() int {
	return that.sessions.Size()
}

func (that *SessionManager) getSession(sessionID string) (*session, error) {
	if !pkg.IsSessionID(sessionID) {
		return nil, fmt.Errorf("%w: malformed id %q", apperror.ErrSessionNotFound, sessionID)
	}

	sess, ok := that.sessions.Load(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, sessionID)
	}

	sess.touch(that.now())

	return sess, nil
}

func (that *SessionManager) closeSession(ctx context.Context, sess *session) {
	log := that.logger.With("method", "closeSession", "session", sess.id)

	sess.controller.Stop()

	sess.mu.Lock()
	for ch := range sess.subscribers {
		close(ch)
	}
	sess.subscribers = nil
	sess.mu.Unlock()

	if err := that.snapshotRepo.DeleteByID(ctx, sess.id); err != nil && !errors.Is(err, repository.ErrSnapshotNotFound) {
		log.Error("failed to delete snapshot", "error", err)
	}

	log.Info("session closed")
}

// publish - stores the snapshot and fans it out. Slow subscribers miss snapshots instead of blocking the game.
// Nothing is stored once the session is closed.
func (that *SessionManager) publish(sess *session, snapshot entity.Snapshot) {
	log := that.logger.With("method", "publish", "session", sess.id)

	snapshot = that.withID(sess, snapshot)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// closed sessions keep no snapshot in the repository
	if sess.subscribers == nil {
		log.Debug("session is closed, snapshot dropped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := that.snapshotRepo.Save(ctx, snapshot); err != nil {
		log.Error("failed to save snapshot", "error", err)
	}

	for ch := range sess.subscribers {
		select {
		case ch <- snapshot:
		default:
			log.Warn("subscriber is too slow, snapshot dropped")
		}
	}
}

func (that *SessionManager) withID(sess *session, snapshot entity.Snapshot) entity.Snapshot {
	snapshot.SessionID = sess.id
	return snapshot
}
