package domain

import "errors"

var (
	ErrOutOfBounds        = errors.New("position out of bounds")
	ErrAlreadyInitialized = errors.New("level already initialized")
	ErrCellOccupied       = errors.New("cell already occupied")
	ErrInvalidDimensions  = errors.New("invalid level dimensions")
)
