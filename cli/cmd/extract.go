package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"unicode/utf8"

	"github.com/ardnew/gsconf/lang"
	"github.com/ardnew/gsconf/log"
)

// Extract reads a CSV page of cells and prints the extracted value.
//
// Without --key every row becomes a mapping from column header to parsed
// cell. With --key the page is read by schema.
type Extract struct {
	Output output `embed:""`

	Key     string   `help:"Column holding entry keys; enables schema extraction." short:"k"`
	Data    []string `help:"Value columns of the schema."                            short:"d"`
	Simple  bool     `help:"Return the single mapping of a one-column schema."`
	Default string   `help:"Column used when a row leaves another value column empty."`
	Skip    []string `default:"#" help:"Skip free-format columns whose header starts with these prefixes."`
	Comma   string   `default:"," help:"CSV field delimiter."`

	Source string `arg:"" default:"-" help:"CSV page file or '-' for stdin." name:"source" optional:""`
}

// Run executes the extract command.
func (e *Extract) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := e.options()
	if err != nil {
		return err
	}

	data, err := readAll(ctx, []string{e.Source})
	if err != nil {
		return err
	}

	page, err := readPage(data, e.Comma)
	if err != nil {
		return err
	}

	parser, err := newParser(ctx)
	if err != nil {
		return err
	}

	v, err := parser.Extract(ctx, page, opts...)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "extracted page",
		slog.String("source", e.Source),
		slog.Int("rows", len(page)),
		slog.String("kind", v.Kind().String()))

	return e.Output.write(outputFrom(ctx), v, parser.Grammar())
}

func (e *Extract) options() ([]lang.ExtractOption, error) {
	if e.Key == "" {
		if len(e.Data) > 0 || e.Simple || e.Default != "" {
			return nil, ErrInvalidOptions.With(
				slog.String("reason", "schema flags require --key"))
		}

		return []lang.ExtractOption{lang.WithSkipPrefixes(e.Skip...)}, nil
	}

	switch {
	case len(e.Data) == 0:
		return nil, ErrInvalidOptions.With(
			slog.String("reason", "--key requires at least one --data column"))

	case e.Simple && len(e.Data) != 1:
		return nil, ErrInvalidOptions.With(
			slog.String("reason", "--simple requires exactly one --data column"),
			slog.Any("data", e.Data))

	}

	opts := []lang.ExtractOption{lang.WithSchema(e.Key, e.Data...)}
	if e.Simple {
		opts[0] = lang.WithSimpleSchema(e.Key, e.Data[0])
	}

	if e.Default != "" {
		opts = append(opts, lang.WithDefaultColumn(e.Default))
	}

	return opts, nil
}

// readPage decodes a CSV page. Rows may differ in length.
func readPage(data []byte, comma string) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	if comma != "" {
		c, size := utf8.DecodeRuneInString(comma)
		if size != len(comma) {
			return nil, ErrInvalidOptions.With(slog.String("comma", comma))
		}

		r.Comma = c
	}

	page, err := r.ReadAll()
	if err != nil {
		return nil, ErrInvalidCSV.Wrap(err)
	}

	return page, nil
}
