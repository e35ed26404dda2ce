package host

import "errors"

var (
	// ErrBadPayload indicates a reply payload can't be decoded.
	ErrBadPayload = errors.New("bad payload")
	// ErrNoGame indicates no game was started.
	ErrNoGame = errors.New("no game")
	// ErrGameOver indicates the game is already won or lost.
	ErrGameOver = errors.New("game over")
	// ErrOutOfRange indicates coordinates outside the board.
	ErrOutOfRange = errors.New("out of range")
)
