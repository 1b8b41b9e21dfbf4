package tmpl

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ardnew/gsconf/lang"
)

// Predefined errors (sentinel values).
var (
	ErrTemplateSyntax = lang.NewError("template syntax error")
	ErrRender         = lang.NewError("render failed")
	ErrMissingKey     = lang.NewError("missing key")
	ErrInvalidPattern = lang.NewError("invalid placeholder pattern")
	ErrBlockFrozen    = lang.NewError("block registry is frozen")
	ErrReadTemplate   = lang.NewError("failed to read template")
	ErrInvalidOutput  = lang.NewError("invalid output")
)

// MissingKeyError reports a placeholder or control tag whose key has no
// value in the render data. It is only returned by strict engines.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return ErrMissingKey.Error() + " " + strconv.Quote(e.Key)
}

// Is matches [ErrMissingKey].
func (e *MissingKeyError) Is(target error) bool { return target == ErrMissingKey }

// LogValue implements slog.LogValuer.
func (e *MissingKeyError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrMissingKey.Error()),
		slog.String("key", e.Key),
	)
}

// syntaxError reports a malformed control tag at a byte offset of the
// template source.
func syntaxError(reason, tag string, offset int) *lang.Error {
	return ErrTemplateSyntax.
		Wrap(errors.New(reason + " " + strconv.Quote(tag) + " at offset " + strconv.Itoa(offset))).
		With(slog.String("tag", tag), slog.Int("offset", offset))
}
