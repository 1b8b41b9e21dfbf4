package repl

import "github.com/ardnew/gsconf/lang"

// Sentinel errors.
var (
	ErrOutOfBounds    = lang.NewError("index out of range")
	ErrNoParser       = lang.NewError("no parser")
	ErrUnknownCommand = lang.NewError("unknown command")
	ErrUnknownFormat  = lang.NewError("unknown format")
)
