package apperror

import "errors"

var (
	ErrInvalidMove       = errors.New("invalid move")
	ErrGameFinished      = errors.New("game is already finished")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnknownMode       = errors.New("unknown game mode")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)
