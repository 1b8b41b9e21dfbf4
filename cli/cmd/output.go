package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/gsconf/lang"
)

// Output formats.
const (
	formatText    = "text"
	formatJSON    = "json"
	formatYAML    = "yaml"
	formatCompact = "compact"
)

// defaultIndent is the indent width used when --indent is zero.
var defaultIndent = map[string]int{
	formatJSON:    2,
	formatYAML:    2,
	formatCompact: lang.DefaultCompactIndent,
}

// output holds the flags shared by commands that print a value.
type output struct {
	Format string `default:"text" enum:"text,json,yaml,compact" help:"Output format (${enum})."               short:"f"`
	Indent int    `default:"0"                                  help:"Indent width, 0 for the format default." short:"i"`
}

func (o output) indent() int {
	if o.Indent > 0 {
		return o.Indent
	}

	return defaultIndent[o.Format]
}

// write prints v to w in the selected format. Text output uses grammar g.
func (o output) write(w io.Writer, v lang.Value, g lang.Grammar) error {
	var buf bytes.Buffer

	switch o.Format {
	case formatText, "":
		buf.WriteString(lang.Format(v, g))

	case formatJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		if err := json.Indent(&buf, b, "", strings.Repeat(" ", o.indent())); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

	case formatYAML:
		b, err := yaml.MarshalWithOptions(v, yaml.Indent(o.indent()))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		buf.Write(bytes.TrimRight(b, "\n"))

	case formatCompact:
		buf.WriteString(lang.Compact(v, lang.WithCompactIndent(o.indent())))

	default:
		return ErrInvalidFormat.With(slog.String("format", o.Format))
	}

	buf.WriteByte('\n')

	if _, err := buf.WriteTo(w); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
