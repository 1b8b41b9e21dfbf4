package cmd

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ardnew/gsconf/lang"
	"github.com/ardnew/gsconf/log"
	"github.com/ardnew/gsconf/tmpl"
)

// Render fills a template with values from data files.
type Render struct {
	templateFlags `embed:""`

	Output output `embed:""`

	Data   []string `help:"Data file(s): .json, .yaml, .csv or intermediate-format cells. Mappings are merged in order." placeholder:"FILE" short:"d"`
	Strict bool     `help:"Fail on keys missing from the data."`
	Strip  bool     `help:"Write text values without JSON quotes."`
	As     string   `default:"text" enum:"text,block,json" help:"Interpret rendered text as ${enum} before printing."`

	Template string `arg:"" help:"Template file, searched in the template directories, or '-' for stdin." name:"template"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var as tmpl.Output
	if err := as.UnmarshalText([]byte(r.As)); err != nil {
		return err
	}

	parser, err := newParser(ctx)
	if err != nil {
		return err
	}

	data, err := loadData(ctx, parser, r.Data)
	if err != nil {
		return err
	}

	e, err := r.engine(parser,
		tmpl.WithStrict(r.Strict),
		tmpl.WithStrip(r.Strip),
		tmpl.WithOutput(as),
	)
	if err != nil {
		return err
	}

	t, err := r.load(ctx, e, r.Template)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	if as == tmpl.OutputText {
		out, err := e.Render(ctx, t, data)
		if err != nil {
			return err
		}

		if _, err := io.WriteString(w, out); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	v, err := e.RenderValue(ctx, t, data)
	if err != nil {
		return err
	}

	return r.Output.write(w, v, parser.Grammar())
}

// loadData decodes each data file and merges the results. A single file may
// hold any value; several files must each hold a mapping, and later keys
// replace earlier ones.
func loadData(ctx context.Context, parser *lang.Parser, paths []string) (lang.Value, error) {
	switch len(paths) {
	case 0:
		return lang.MapOf(lang.NewMapping(0)), nil
	case 1:
		return decodeData(ctx, parser, paths[0])
	}

	merged := lang.NewMapping(0)

	for _, path := range paths {
		v, err := decodeData(ctx, parser, path)
		if err != nil {
			return lang.Value{}, err
		}

		m, ok := v.AsMap()
		if !ok {
			return lang.Value{}, ErrMergeData.With(
				slog.String("path", path),
				slog.String("kind", v.Kind().String()))
		}

		for k, e := range m.All() {
			merged.Set(k, e)
		}
	}

	return lang.MapOf(merged), nil
}

// decodeData decodes one data file by its extension.
func decodeData(ctx context.Context, parser *lang.Parser, path string) (lang.Value, error) {
	raw, err := readAll(ctx, []string{path})
	if err != nil {
		return lang.Value{}, err
	}

	var v lang.Value

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		v, err = lang.FromJSON(raw)

	case ".yaml", ".yml":
		v, err = lang.FromYAML(raw)

	case ".csv":
		var page [][]string
		if page, err = readPage(raw, ","); err == nil {
			v, err = parser.Extract(ctx, page, lang.WithSkipPrefixes("#"))
		}

	default:
		v, err = parser.Parse(ctx, string(raw))
	}

	if err != nil {
		return lang.Value{}, ErrReadData.Wrap(err).With(slog.String("path", path))
	}

	log.DebugContext(ctx, "loaded data",
		slog.String("path", path),
		slog.String("kind", v.Kind().String()))

	return v, nil
}
