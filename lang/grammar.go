package lang

import (
	"log/slog"
	"strings"
	"unicode"
)

// Version selects how mapping values under a key are shaped.
type Version int

const (
	// V1 boxes every keyed value with an implicit dlist command.
	V1 Version = iota + 1
	// V2 leaves keyed values bare unless a command wraps them.
	V2
)

// String returns the version name ("v1" or "v2").
func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return "unknown"
	}
}

// ParseVersion parses a version name such as "v2" or "2".
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v1", "1":
		return V1, nil
	case "v2", "2":
		return V2, nil
	default:
		return 0, ErrInvalidGrammar.With(slog.String("version", s))
	}
}

// Grammar holds the symbols and switches of the intermediate format.
//
// A Grammar is a plain value: copies are independent, and a Parser keeps its
// own copy for its whole lifetime.
type Grammar struct {
	SepBase    rune // element separator within a block
	SepDict    rune // key/value separator
	SepBlock   rune // top-level block separator
	SepFunc    rune // key command separator
	ListOpen   rune
	ListClose  rune
	BlockOpen  rune
	BlockClose rune
	Raw        rune // raw region delimiter

	ToNum   bool // coerce numeric-looking leaves to numbers
	Version Version
	IsRaw   bool // return input verbatim as text
}

// GrammarOption configures a Grammar.
type GrammarOption func(*Grammar)

// DefaultGrammar returns the standard grammar with opts applied.
func DefaultGrammar(opts ...GrammarOption) Grammar {
	g := Grammar{
		SepBase:    ',',
		SepDict:    '=',
		SepBlock:   '|',
		SepFunc:    '!',
		ListOpen:   '[',
		ListClose:  ']',
		BlockOpen:  '{',
		BlockClose: '}',
		Raw:        '"',
		ToNum:      true,
		Version:    V1,
	}

	for _, opt := range opts {
		opt(&g)
	}

	return g
}

// WithSeparators overrides the base, dict, block and command separators.
// A zero rune keeps the current symbol.
func WithSeparators(base, dict, block, fn rune) GrammarOption {
	return func(g *Grammar) {
		setRune(&g.SepBase, base)
		setRune(&g.SepDict, dict)
		setRune(&g.SepBlock, block)
		setRune(&g.SepFunc, fn)
	}
}

// WithBrackets overrides the list and block bracket pairs.
// A zero rune keeps the current symbol.
func WithBrackets(listOpen, listClose, blockOpen, blockClose rune) GrammarOption {
	return func(g *Grammar) {
		setRune(&g.ListOpen, listOpen)
		setRune(&g.ListClose, listClose)
		setRune(&g.BlockOpen, blockOpen)
		setRune(&g.BlockClose, blockClose)
	}
}

// WithRaw overrides the raw region delimiter.
func WithRaw(raw rune) GrammarOption {
	return func(g *Grammar) { setRune(&g.Raw, raw) }
}

// WithToNum toggles numeric coercion of leaves.
func WithToNum(on bool) GrammarOption {
	return func(g *Grammar) { g.ToNum = on }
}

// WithGrammarVersion selects the value shaping version.
func WithGrammarVersion(v Version) GrammarOption {
	return func(g *Grammar) { g.Version = v }
}

// WithIsRaw makes parsing return its input verbatim.
func WithIsRaw(on bool) GrammarOption {
	return func(g *Grammar) { g.IsRaw = on }
}

func setRune(dst *rune, r rune) {
	if r != 0 {
		*dst = r
	}
}

// symbols returns every structural symbol with its role name.
func (g Grammar) symbols() []struct {
	name string
	sym  rune
} {
	return []struct {
		name string
		sym  rune
	}{
		{"sep_base", g.SepBase},
		{"sep_dict", g.SepDict},
		{"sep_block", g.SepBlock},
		{"sep_func", g.SepFunc},
		{"list_open", g.ListOpen},
		{"list_close", g.ListClose},
		{"block_open", g.BlockOpen},
		{"block_close", g.BlockClose},
		{"raw", g.Raw},
	}
}

// Validate checks that every symbol is set, printable, not a space, and
// distinct from the others.
func (g Grammar) Validate() error {
	seen := make(map[rune]string)

	for _, s := range g.symbols() {
		if s.sym == 0 || unicode.IsSpace(s.sym) || !unicode.IsPrint(s.sym) {
			return ErrInvalidGrammar.With(
				slog.String("symbol", s.name),
				slog.String("reason", "must be a printable non-space rune"),
			)
		}

		if other, ok := seen[s.sym]; ok {
			return ErrInvalidGrammar.With(
				slog.String("symbol", s.name),
				slog.String("conflicts", other),
				slog.String("rune", string(s.sym)),
			)
		}

		seen[s.sym] = s.name
	}

	if g.Version != V1 && g.Version != V2 {
		return ErrInvalidGrammar.With(slog.Int("version", int(g.Version)))
	}

	return nil
}

// isSymbol reports whether r has structural meaning in g.
func (g Grammar) isSymbol(r rune) bool {
	for _, s := range g.symbols() {
		if r == s.sym {
			return true
		}
	}

	return false
}

// isOpen reports whether r opens a bracket pair, returning its closer.
func (g Grammar) isOpen(r rune) (rune, bool) {
	switch r {
	case g.BlockOpen:
		return g.BlockClose, true
	case g.ListOpen:
		return g.ListClose, true
	}

	return 0, false
}

func (g Grammar) isClose(r rune) bool {
	return r == g.BlockClose || r == g.ListClose
}

// LogValue implements slog.LogValuer.
func (g Grammar) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("symbols", string([]rune{
			g.SepBase, g.SepDict, g.SepBlock, g.SepFunc,
			g.ListOpen, g.ListClose, g.BlockOpen, g.BlockClose, g.Raw,
		})),
		slog.Bool("to_num", g.ToNum),
		slog.String("version", g.Version.String()),
		slog.Bool("is_raw", g.IsRaw),
	)
}
