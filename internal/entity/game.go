package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
)

const (
	ModePvP Mode = "pvp"
	ModePvC Mode = "pvc"
)

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Mode - is either two humans sharing the board or a human against the bot.
type Mode string

func ParseMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case ModePvP, ModePvC:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, value)
	}
}

type Difficulty string

func ParseDifficulty(value string) (Difficulty, error) {
	switch difficulty := Difficulty(value); difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return difficulty, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, value)
	}
}

// Score - counts finished rounds. It survives restarts and is cleared by a new game.
type Score struct {
	X   int `json:"x"`
	O   int `json:"o"`
	Tie int `json:"tie"`
}

// Record - adds a terminal status to the score. In-progress statuses are ignored.
func (that *Score) Record(status Status) {
	switch {
	case status.IsWonBy(PlayerX):
		that.X++
	case status.IsWonBy(PlayerO):
		that.O++
	case status.State == StatusDrawn:
		that.Tie++
	}
}

func (that *Score) Reset() {
	*that = Score{}
}

// Snapshot - is everything the presentation layer needs to render a session.
type Snapshot struct {
	SessionID  string     `json:"session_id,omitempty"`
	Board      Board      `json:"board"`
	Turn       Cell       `json:"player_turn"`
	Active     bool       `json:"active"`
	Mode       Mode       `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
	Score      Score      `json:"score"`
	Status     Status     `json:"status"`
	Players    []Player   `json:"players"`
	Message    string     `json:"message"`
}
