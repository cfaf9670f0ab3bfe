package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const (
	centerCell = 4

	// heuristicShare - chance that a medium bot plays the heuristic move.
	heuristicShare = 0.5
)

var (
	ErrNoAvailableMoves = errors.New("no available moves")
	ErrInvalidBotMark   = errors.New("bot mark must be X or O")

	corners = [...]int{0, 2, 6, 8}
)

// Rand - is the randomness the bot draws from. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type BotService interface {
	ChooseCell(board entity.Board, mark entity.Cell, difficulty entity.Difficulty) (int, error)
}

type botService struct {
	rand Rand
}

func NewBotService(rand Rand) BotService {
	return &botService{rand: rand}
}

// ChooseCell - picks an empty cell for the bot playing mark. The board is taken by value,
// so probes never reach the caller's board.
func (that *botService) ChooseCell(board entity.Board, mark entity.Cell, difficulty entity.Difficulty) (int, error) {
	if !mark.IsPlayer() {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidBotMark, mark)
	}

	if board.IsFull() {
		return 0, ErrNoAvailableMoves
	}

	switch difficulty {
	case entity.DifficultyEasy:
		return that.randomCell(&board), nil
	case entity.DifficultyHard:
		return that.bestCell(&board, mark), nil
	default:
		if that.rand.Float64() < heuristicShare {
			return that.bestCell(&board, mark), nil
		}

		return that.randomCell(&board), nil
	}
}

// bestCell - win, block, center, corner, anything, in that order.
func (that *botService) bestCell(board *entity.Board, mark entity.Cell) int {
	if cell, ok := findWinningCell(board, mark); ok {
		return cell
	}

	if cell, ok := findWinningCell(board, mark.Opponent()); ok {
		return cell
	}

	if board.IsEmpty(centerCell) {
		return centerCell
	}

	freeCorners := make([]int, 0, len(corners))
	for _, corner := range corners {
		if board.IsEmpty(corner) {
			freeCorners = append(freeCorners, corner)
		}
	}

	if len(freeCorners) > 0 {
		return freeCorners[that.rand.IntN(len(freeCorners))]
	}

	return that.randomCell(board)
}

func (that *botService) randomCell(board *entity.Board) int {
	availableCells := board.EmptyCells()

	return availableCells[that.rand.IntN(len(availableCells))]
}

// findWinningCell - returns the first empty cell, ascending, that wins the game for player.
func findWinningCell(board *entity.Board, player entity.Cell) (int, bool) {
	for i := range board {
		if !board.IsEmpty(i) {
			continue
		}

		board.Place(i, player)
		won := entity.Evaluate(*board).IsWonBy(player)
		board.Clear(i)

		if won {
			return i, true
		}
	}

	return 0, false
}
