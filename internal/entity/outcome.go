package entity

import "fmt"

const (
	StatusInProgress StatusState = "in_progress"
	StatusWon        StatusState = "won"
	StatusDrawn      StatusState = "drawn"
)

// StatusState - is the kind of game status.
type StatusState string

// Line - is a triple of cell indexes.
type Line [3]int

// WinCombos - rows, columns and diagonals in the order they are checked.
var WinCombos = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Status - is the game status derived from a board.
type Status struct {
	State  StatusState `json:"state"`
	Winner Cell        `json:"winner"`
	Line   *Line       `json:"line,omitempty"`
}

func (that Status) IsTerminal() bool {
	return that.State == StatusWon || that.State == StatusDrawn
}

func (that Status) IsWonBy(player Cell) bool {
	return that.State == StatusWon && that.Winner == player
}

// Message - is the text shown to players for this status.
func (that Status) Message(turn Cell) string {
	switch that.State {
	case StatusWon:
		return fmt.Sprintf("Player %s Wins!", that.Winner)
	case StatusDrawn:
		return "It's a Draw!"
	default:
		return fmt.Sprintf("Player %s's Turn", turn)
	}
}

// WinningLine - returns the first combo whose three cells hold the same mark.
func WinningLine(board Board) (Line, bool) {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return combo, true
		}
	}

	return Line{}, false
}

func IsDraw(board Board) bool {
	if _, ok := WinningLine(board); ok {
		return false
	}

	return board.IsFull()
}

// Evaluate - derives the status of a board. It has no side effects.
func Evaluate(board Board) Status {
	if line, ok := WinningLine(board); ok {
		return Status{
			State:  StatusWon,
			Winner: board[line[0]],
			Line:   &line,
		}
	}

	if board.IsFull() {
		return Status{State: StatusDrawn}
	}

	return Status{State: StatusInProgress}
}
