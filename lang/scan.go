package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// validate checks bracket nesting and raw regions across the whole input.
// Brackets inside raw regions are ignored.
func (g Grammar) validate(s string) error {
	type open struct {
		close rune
		pos   Position
	}

	var (
		stack  []open
		inRaw  bool
		rawPos Position
		pos    = Position{Line: 1, Column: 1}
	)

	for i, r := range s {
		pos.Offset = i

		switch {
		case r == g.Raw:
			inRaw = !inRaw
			if inRaw {
				rawPos = pos
			}

		case inRaw:

		default:
			if c, ok := g.isOpen(r); ok {
				stack = append(stack, open{close: c, pos: pos})

				break
			}

			if g.isClose(r) {
				if len(stack) == 0 {
					return &SyntaxError{Pos: pos, Reason: "unexpected " + quoteRune(r)}
				}

				if top := stack[len(stack)-1]; top.close != r {
					return &SyntaxError{
						Pos:    pos,
						Reason: "expected " + quoteRune(top.close) + ", found " + quoteRune(r),
					}
				}

				stack = stack[:len(stack)-1]
			}
		}

		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}

	if inRaw {
		return &SyntaxError{Pos: rawPos, Reason: "unterminated raw region"}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]

		return &SyntaxError{Pos: top.pos, Reason: "missing " + quoteRune(top.close)}
	}

	return nil
}

// splitBlocks cuts s into top-level blocks. A block ends at a block
// separator outside brackets, at the close of a bracketed block that nothing
// but separators precedes, or at the end of the input. Once any other
// content has been seen at depth 0, bracketed blocks no longer stand alone.
func (g Grammar) splitBlocks(s string) []string {
	var (
		out      []string
		isolated = true
		inRaw    bool
		depth    int
		start    int
	)

	for i, r := range s {
		switch {
		case r == g.Raw:
			inRaw = !inRaw
			if depth == 0 {
				isolated = false
			}
		case !inRaw && isOpenRune(g, r):
			depth++
		case !inRaw && g.isClose(r):
			depth--
		case depth == 0 && !g.isBlockSpace(r):
			isolated = false
		}

		next := i + runeWidth(s, i)

		end := next >= len(s)
		if inRaw && !end {
			continue
		}

		bySep := r == g.SepBlock && depth == 0 && !inRaw
		alone := isolated && depth == 0 && !inRaw && g.isClose(r)

		if bySep || alone || end {
			block := g.trimBlock(s[start:next])
			if block == "" {
				continue
			}

			out = append(out, block)
			start = next
		}
	}

	return out
}

// splitTop splits s on sep wherever sep is outside brackets and raw
// regions. Parts are trimmed of surrounding space.
func (g Grammar) splitTop(s string, sep rune) []string {
	var (
		out   []string
		inRaw bool
		depth int
		start int
	)

	for i, r := range s {
		switch {
		case r == g.Raw:
			inRaw = !inRaw
		case inRaw:
		case isOpenRune(g, r):
			depth++
		case g.isClose(r):
			depth--
		case r == sep && depth == 0:
			out = append(out, strings.TrimSpace(s[start:i]))
			start = i + runeWidth(s, i)
		}
	}

	return append(out, strings.TrimSpace(s[start:]))
}

// cutTop slices s around the first sep outside brackets and raw regions.
func (g Grammar) cutTop(s string, sep rune) (string, string, bool) {
	var (
		inRaw bool
		depth int
	)

	for i, r := range s {
		switch {
		case r == g.Raw:
			inRaw = !inRaw
		case inRaw:
		case isOpenRune(g, r):
			depth++
		case g.isClose(r):
			depth--
		case r == sep && depth == 0:
			return s[:i], s[i+runeWidth(s, i):], true
		}
	}

	return s, "", false
}

// enclosed reports whether s is a single bracket pair opened by open whose
// close is the last rune of s, returning the text between them.
func (g Grammar) enclosed(s string, open rune) (string, bool) {
	first, size := utf8.DecodeRuneInString(s)
	if first != open || len(s) < 2 {
		return "", false
	}

	var (
		inRaw bool
		depth int
	)

	for i, r := range s {
		switch {
		case r == g.Raw:
			inRaw = !inRaw
		case inRaw:
		case isOpenRune(g, r):
			depth++
		case g.isClose(r):
			depth--
			if depth == 0 {
				if i+runeWidth(s, i) != len(s) {
					return "", false
				}

				return s[size:i], true
			}
		}
	}

	return "", false
}

// unquote reports whether s is one raw region, returning its content.
func (g Grammar) unquote(s string) (string, bool) {
	first, size := utf8.DecodeRuneInString(s)
	if first != g.Raw || len(s) < 2*size {
		return "", false
	}

	i := strings.IndexRune(s[size:], g.Raw)
	if i < 0 || size+i+size != len(s) {
		return "", false
	}

	return s[size : size+i], true
}

// runeWidth returns the byte width of the rune at s[i]. An invalid byte is
// one byte wide, unlike utf8.RuneLen(utf8.RuneError).
func runeWidth(s string, i int) int {
	_, n := utf8.DecodeRuneInString(s[i:])

	return n
}

// isBlockSpace reports whether r may surround blocks without joining them.
func (g Grammar) isBlockSpace(r rune) bool {
	return unicode.IsSpace(r) || r == g.SepBlock || r == g.SepBase
}

func (g Grammar) trimBlock(s string) string {
	return strings.TrimFunc(s, g.isBlockSpace)
}

func isOpenRune(g Grammar, r rune) bool {
	_, ok := g.isOpen(r)

	return ok
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
