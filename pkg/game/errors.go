package game

import "errors"

var (
	// ErrTooManyMines indicates a tier can't place its mines.
	ErrTooManyMines = errors.New("mine count must be less than cell count")
	// ErrInvalidTier indicates a tier with a non-positive size or mine count.
	ErrInvalidTier = errors.New("invalid tier")
	// ErrUnknownDifficulty indicates the difficulty code isn't in the table.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)
