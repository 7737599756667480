package repository

import "errors"

var (
	// ErrConfig is fatal: the holdings source is missing, malformed, empty or holds an invalid entry.
	ErrConfig          = errors.New("invalid holdings source")
	ErrDuplicateSymbol = errors.New("duplicate symbol")
)
