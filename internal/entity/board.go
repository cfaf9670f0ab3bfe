package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
)

const BoardSize = 9

// Cell - is the content of a board cell: empty or one of the two player marks.
type Cell uint8

const (
	EmptyCell Cell = iota
	PlayerX
	PlayerO
)

func (that Cell) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

// Opponent - returns the other player's mark. EmptyCell has no opponent.
func (that Cell) Opponent() Cell {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func (that Cell) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*that = EmptyCell
	case "X":
		*that = PlayerX
	case "O":
		*that = PlayerO
	default:
		return fmt.Errorf("unknown cell value %q", text)
	}

	return nil
}

// Board - is the 3x3 grid in row-major order.
type Board [BoardSize]Cell

// Apply - sets the cell at index to player. Out of range indexes and occupied cells are rejected.
func (that *Board) Apply(index int, player Cell) error {
	if index < 0 || index >= len(that) {
		return fmt.Errorf("%w: cell %d is out of range", apperror.ErrInvalidMove, index)
	}

	if !player.IsPlayer() {
		return fmt.Errorf("%w: %d is not a player mark", apperror.ErrInvalidMove, player)
	}

	if that[index] != EmptyCell {
		return fmt.Errorf("%w: cell %d is already occupied", apperror.ErrInvalidMove, index)
	}

	that[index] = player

	return nil
}

// Place - tentatively sets a cell without validation. Pair it with Clear.
func (that *Board) Place(index int, player Cell) {
	that[index] = player
}

// Clear - rolls a tentative placement back to empty.
func (that *Board) Clear(index int) {
	that[index] = EmptyCell
}

func (that *Board) Reset() {
	*that = Board{}
}

func (that *Board) IsEmpty(index int) bool {
	return index >= 0 && index < len(that) && that[index] == EmptyCell
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// EmptyCells - returns the indexes of empty cells in ascending order.
func (that *Board) EmptyCells() []int {
	cells := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}
