package lang

import (
	"io"
	"strings"
)

// Compact layout defaults.
const (
	DefaultCompactIndent   = 4
	DefaultCompactMaxItems = 5
)

// CompactOption configures WriteCompact.
type CompactOption func(*compactConfig)

type compactConfig struct {
	indent   int
	maxItems int
	inline   bool
}

// WithCompactIndent sets the number of spaces per nesting level.
func WithCompactIndent(n int) CompactOption {
	return func(c *compactConfig) { c.indent = n }
}

// WithCompactMaxItems sets how many scalar entries a mapping may hold and
// still be written on one line.
func WithCompactMaxItems(n int) CompactOption {
	return func(c *compactConfig) { c.maxItems = n }
}

// WithCompactInline toggles writing sequences of numbers and text on one
// line.
func WithCompactInline(on bool) CompactOption {
	return func(c *compactConfig) { c.inline = on }
}

// WriteCompact writes v as indented JSON laid out for reading game
// configuration by eye: sequences of numbers and text stay on one line, as
// do small mappings of scalars.
func WriteCompact(w io.Writer, v Value, opts ...CompactOption) error {
	_, err := io.WriteString(w, Compact(v, opts...))

	return err
}

// Compact returns the WriteCompact layout of v as a string.
func Compact(v Value, opts ...CompactOption) string {
	c := compactConfig{
		indent:   DefaultCompactIndent,
		maxItems: DefaultCompactMaxItems,
		inline:   true,
	}

	for _, opt := range opts {
		opt(&c)
	}

	var sb strings.Builder

	c.write(&sb, v, 0)

	return sb.String()
}

func (c compactConfig) write(sb *strings.Builder, v Value, level int) {
	pad := strings.Repeat(" ", level)
	inner := strings.Repeat(" ", level+c.indent)

	switch v.kind {
	case KindMapping:
		if v.m.Len() == 0 {
			sb.WriteString("{}")

			return
		}

		if v.m.Len() <= c.maxItems && !containsCompound(v.m.Values()) {
			sb.WriteString("{ ")

			i := 0
			for k, e := range v.m.All() {
				if i > 0 {
					sb.WriteString(", ")
				}

				writeJSONString(sb, k)
				sb.WriteString(": ")
				writeJSON(sb, e)

				i++
			}

			sb.WriteString(" }")

			return
		}

		sb.WriteString("{\n")

		i := 0
		for k, e := range v.m.All() {
			if i > 0 {
				sb.WriteString(",\n")
			}

			sb.WriteString(inner)
			writeJSONString(sb, k)
			sb.WriteString(": ")
			c.write(sb, e, level+c.indent)

			i++
		}

		sb.WriteString("\n" + pad + "}")
	case KindSequence:
		if c.inline && allInline(v.seq) {
			writeJSON(sb, v)

			return
		}

		sb.WriteString("[\n")

		for i, e := range v.seq {
			if i > 0 {
				sb.WriteString(",\n")
			}

			sb.WriteString(inner)
			c.write(sb, e, level+c.indent)
		}

		sb.WriteString("\n" + pad + "]")
	default:
		writeJSON(sb, v)
	}
}

func containsCompound(vs []Value) bool {
	for _, v := range vs {
		if v.IsCompound() {
			return true
		}
	}

	return false
}

// allInline reports sequences holding only numbers, booleans and text.
func allInline(vs []Value) bool {
	for _, v := range vs {
		switch v.kind {
		case KindNumber, KindBool, KindText:
		default:
			return false
		}
	}

	return true
}
