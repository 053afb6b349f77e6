package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("history index out of range")
	ErrEditDeclined = errors.New("edit declined")
	ErrUnknownCtrl  = errors.New("unknown command")
)
