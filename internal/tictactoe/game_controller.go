package tictactoe

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const DefaultOpponentDelay = 600 * time.Millisecond

type botService interface {
	ChooseCell(board entity.Board, mark entity.Cell, difficulty entity.Difficulty) (int, error)
}

// Scheduler - runs f once after d. The returned func cancels it if it has not fired yet.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type Options struct {
	Mode          entity.Mode
	Difficulty    entity.Difficulty
	OpponentDelay time.Duration
	Scheduler     Scheduler

	// OnChange - receives snapshots in the order the state changed, bot moves included.
	// It must not call back into the controller's mutating methods.
	OnChange func(entity.Snapshot)
}

// GameController - owns one board, its score and the bot turn scheduling.
type GameController struct {
	logger    *slog.Logger
	bot       botService
	scheduler Scheduler
	delay     time.Duration
	onChange  func(entity.Snapshot)

	mu         sync.Mutex
	board      entity.Board
	turn       entity.Cell
	status     entity.Status
	mode       entity.Mode
	difficulty entity.Difficulty
	score      entity.Score

	// epoch - changes on every reset; a scheduled bot move only runs in the epoch it was scheduled in.
	epoch       uint64
	stopPending func() bool

	// version - grows with every state change. Observers never get a snapshot older than one they already got.
	version   uint64
	notifyMu  sync.Mutex
	delivered uint64
}

func NewGameController(logger *slog.Logger, bot botService, opts Options) (*GameController, error) {
	mode, err := entity.ParseMode(string(opts.Mode))
	if err != nil {
		return nil, fmt.Errorf("invalid controller options: %w", err)
	}

	difficulty, err := entity.ParseDifficulty(string(opts.Difficulty))
	if err != nil {
		return nil, fmt.Errorf("invalid controller options: %w", err)
	}

	if opts.Scheduler == nil {
		opts.Scheduler = timerScheduler{}
	}

	if opts.OpponentDelay < 0 {
		opts.OpponentDelay = DefaultOpponentDelay
	}

	controller := &GameController{
		logger:     logger.With("component", "gameController"),
		bot:        bot,
		scheduler:  opts.Scheduler,
		delay:      opts.OpponentDelay,
		onChange:   opts.OnChange,
		mode:       mode,
		difficulty: difficulty,
	}
	controller.resetRound()

	return controller, nil
}

// OnCellSelected - plays index for the active human player. Moves on occupied or
// out of range cells, after the round ended, or while the bot is to move are ignored.
func (that *GameController) OnCellSelected(index int) bool {
	log := that.logger.With("method", "OnCellSelected", "cell", index)

	that.mu.Lock()

	if err := that.confirmHumanTurn(); err != nil {
		that.mu.Unlock()
		log.Debug("move ignored", "reason", err)

		return false
	}

	if err := that.makeMove(index); err != nil {
		that.mu.Unlock()
		log.Debug("move ignored", "reason", err)

		return false
	}

	that.unlockAndNotify()

	return true
}

// Restart - clears the board and gives the turn back to X. The score is kept.
func (that *GameController) Restart() {
	that.mu.Lock()
	that.resetRound()
	that.unlockAndNotify()
}

// NewGame - zeroes the score and restarts.
func (that *GameController) NewGame() {
	that.mu.Lock()
	that.score.Reset()
	that.resetRound()
	that.unlockAndNotify()
}

func (that *GameController) SwitchMode(mode entity.Mode) error {
	if _, err := entity.ParseMode(string(mode)); err != nil {
		return fmt.Errorf("failed to switch mode: %w", err)
	}

	that.mu.Lock()
	that.mode = mode
	that.resetRound()
	that.unlockAndNotify()

	return nil
}

// SetDifficulty - applies from the next bot move on; the round is not restarted.
func (that *GameController) SetDifficulty(difficulty entity.Difficulty) error {
	if _, err := entity.ParseDifficulty(string(difficulty)); err != nil {
		return fmt.Errorf("failed to set difficulty: %w", err)
	}

	that.mu.Lock()
	that.difficulty = difficulty
	that.unlockAndNotify()

	return nil
}

func (that *GameController) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshotLocked()
}

// Stop - drops a pending bot move and every snapshot not delivered yet. Once it returns,
// the observer gets nothing from state changes made before the call. The controller stays usable.
func (that *GameController) Stop() {
	that.mu.Lock()
	that.epoch++
	that.cancelPending()
	that.version++
	version := that.version
	that.mu.Unlock()

	that.notifyMu.Lock()
	defer that.notifyMu.Unlock()

	if version > that.delivered {
		that.delivered = version
	}
}

func (that *GameController) confirmHumanTurn() error {
	if that.status.IsTerminal() {
		return apperror.ErrGameFinished
	}

	if that.isBotTurn() {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// makeMove - applies a move for the active player and moves the round forward. Must hold mu.
func (that *GameController) makeMove(index int) error {
	if err := that.board.Apply(index, that.turn); err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}

	that.status = entity.Evaluate(that.board)
	if that.status.IsTerminal() {
		that.score.Record(that.status)
		that.logger.Info("round finished", "state", that.status.State, "winner", that.status.Winner.String())

		return nil
	}

	that.turn = that.turn.Opponent()

	if that.isBotTurn() {
		that.scheduleBotMove()
	}

	return nil
}

func (that *GameController) isBotTurn() bool {
	return that.mode == entity.ModePvC && that.turn == entity.BotMark
}

func (that *GameController) scheduleBotMove() {
	epoch := that.epoch
	that.stopPending = that.scheduler.AfterFunc(that.delay, func() {
		that.playBotMove(epoch)
	})
}

func (that *GameController) playBotMove(epoch uint64) {
	log := that.logger.With("method", "playBotMove")

	that.mu.Lock()

	if epoch != that.epoch || that.status.IsTerminal() || !that.isBotTurn() {
		that.mu.Unlock()
		log.Debug("stale bot move dropped")

		return
	}

	that.stopPending = nil

	difficulty := that.difficulty

	cell, err := that.bot.ChooseCell(that.board, entity.BotMark, difficulty)
	if err == nil {
		err = that.makeMove(cell)
	}

	if err != nil {
		// the bot skips its turn so the round is not stuck on it
		that.turn = that.turn.Opponent()
		that.unlockAndNotify()
		log.Error("bot failed to make turn, turn handed back", "cell", cell, "error", err)

		return
	}

	that.unlockAndNotify()
	log.Debug("bot moved", "cell", cell, "difficulty", difficulty)
}

// resetRound - must hold mu.
func (that *GameController) resetRound() {
	that.epoch++
	that.cancelPending()

	that.board.Reset()
	that.turn = entity.StartingMark
	that.status = entity.Evaluate(that.board)
}

func (that *GameController) cancelPending() {
	if that.stopPending != nil {
		that.stopPending()
		that.stopPending = nil
	}
}

func (that *GameController) snapshotLocked() entity.Snapshot {
	return entity.Snapshot{
		Board:      that.board,
		Turn:       that.turn,
		Active:     !that.status.IsTerminal(),
		Mode:       that.mode,
		Difficulty: that.difficulty,
		Score:      that.score,
		Status:     that.status,
		Players:    entity.PlayersFor(that.mode),
		Message:    that.status.Message(that.turn),
	}
}

// unlockAndNotify - records a state change, releases mu and hands the snapshot to the observer.
// A snapshot that lost the race to a newer one is dropped. Must hold mu.
func (that *GameController) unlockAndNotify() {
	that.version++
	version := that.version
	snapshot := that.snapshotLocked()
	that.mu.Unlock()

	that.notifyMu.Lock()
	defer that.notifyMu.Unlock()

	if version <= that.delivered {
		return
	}

	that.delivered = version

	if that.onChange != nil {
		that.onChange(snapshot)
	}
}
