package lang

import (
	"strings"
	"unicode"
)

// Format writes v in the intermediate format of g, such that parsing the
// result with the same grammar yields v again.
//
// Some trees have no exact spelling: text containing the raw delimiter, empty
// mappings, and single-element sequences nested directly in sequences unless
// their element is a plain scalar. These are written as close as the
// notation allows.
func Format(v Value, g Grammar) string {
	f := formatter{g: g, sb: new(strings.Builder)}
	f.top(v)

	return f.sb.String()
}

// FormatText returns the intermediate-format spelling of v using the default
// grammar.
func FormatText(v Value) string { return Format(v, DefaultGrammar()) }

type formatter struct {
	g  Grammar
	sb *strings.Builder
}

func (f formatter) top(v Value) {
	switch v.kind {
	case KindMapping:
		f.entries(v.m)
	default:
		f.elem(v)
	}
}

// elem writes v where it stands alone as a block element.
func (f formatter) elem(v Value) {
	switch v.kind {
	case KindSequence:
		if len(v.seq) == 1 {
			if lit, ok := f.literal(v); ok {
				f.sb.WriteString(lit)

				return
			}
		}

		f.sb.WriteRune(f.g.BlockOpen)

		for i, e := range v.seq {
			if i > 0 {
				f.sb.WriteRune(f.g.SepBase)
				f.sb.WriteByte(' ')
			}

			f.elem(e)
		}

		f.sb.WriteRune(f.g.BlockClose)
	case KindMapping:
		f.sb.WriteRune(f.g.BlockOpen)
		f.entries(v.m)
		f.sb.WriteRune(f.g.BlockClose)
	default:
		f.scalar(v)
	}
}

func (f formatter) entries(m *Mapping) {
	i := 0
	for k, v := range m.All() {
		if i > 0 {
			f.sb.WriteRune(f.g.SepBase)
			f.sb.WriteByte(' ')
		}

		f.entry(k, v)

		i++
	}
}

// entry writes "key = value", adding the command that reproduces the
// value's boxing under the grammar version.
func (f formatter) entry(key string, v Value) {
	var (
		chain Chain
		val   = v
	)

	single := v.kind == KindSequence && len(v.seq) == 1

	switch {
	case f.g.Version == V1 && v.kind == KindMapping:
		chain = Chain{CmdDList, "extract"}
	case f.g.Version == V1 && single && v.seq[0].kind == KindMapping:
		val = v.seq[0]
	case single:
		chain = Chain{CmdFList}
		val = v.seq[0]
	}

	f.key(key, chain)
	f.sb.WriteByte(' ')
	f.sb.WriteRune(f.g.SepDict)
	f.sb.WriteByte(' ')

	if val.kind == KindMapping {
		f.sb.WriteRune(f.g.BlockOpen)
		f.entries(val.m)
		f.sb.WriteRune(f.g.BlockClose)

		return
	}

	f.elem(val)
}

func (f formatter) key(key string, chain Chain) {
	if f.needsQuote(key) || strings.ContainsRune(key, f.g.SepFunc) || f.hasShorthandSuffix(key) {
		f.raw(key)

		return
	}

	f.sb.WriteString(key)

	for _, call := range chain {
		f.sb.WriteRune(f.g.SepFunc)
		f.sb.WriteString(call)
	}
}

func (f formatter) hasShorthandSuffix(key string) bool {
	for sym := range builtinShorthands() {
		if strings.HasSuffix(key, sym) {
			return true
		}
	}

	return false
}

func (f formatter) scalar(v Value) {
	if v.kind != KindText {
		f.sb.WriteString(v.String())

		return
	}

	if f.needsQuote(v.s) || !f.g.parseLeaf(v.s).Equal(v) {
		f.raw(v.s)

		return
	}

	f.sb.WriteString(v.s)
}

func (f formatter) raw(s string) {
	f.sb.WriteRune(f.g.Raw)
	f.sb.WriteString(s)
	f.sb.WriteRune(f.g.Raw)
}

// needsQuote reports text that would not read back as itself unquoted.
func (f formatter) needsQuote(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}

	return strings.ContainsFunc(s, func(r rune) bool {
		return f.g.isSymbol(r) || r == '\'' || unicode.IsControl(r)
	})
}

// literal spells a sequence as a bracketed literal leaf, which keeps
// single-element sequences intact. It fails for anything but plain scalars.
func (f formatter) literal(v Value) (string, bool) {
	if !f.g.ToNum || f.g.ListOpen != '[' || f.g.ListClose != ']' {
		return "", false
	}

	var sb strings.Builder

	sb.WriteByte('[')

	for i, e := range v.seq {
		if i > 0 {
			sb.WriteString(", ")
		}

		switch e.kind {
		case KindNull:
			sb.WriteString("nil")
		case KindBool, KindNumber:
			sb.WriteString(e.String())
		case KindText:
			if strings.ContainsFunc(e.s, func(r rune) bool {
				return f.g.isSymbol(r) || r == '\'' || r == '\\' || unicode.IsControl(r)
			}) {
				return "", false
			}

			sb.WriteByte('\'')
			sb.WriteString(e.s)
			sb.WriteByte('\'')
		default:
			return "", false
		}
	}

	sb.WriteByte(']')

	return sb.String(), true
}
