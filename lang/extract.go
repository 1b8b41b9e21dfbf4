package lang

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// ExtractOption configures Parser.Extract.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	key        string
	data       []string
	defaultCol string
	simple     bool
	skipPrefix []string
	hasSchema  bool
}

// WithSchema extracts a page by schema: key names the column holding entry
// keys and data names the value columns. The result maps each data column
// to a mapping of key to parsed value.
func WithSchema(key string, data ...string) ExtractOption {
	return func(c *extractConfig) {
		c.key = key
		c.data = data
		c.hasSchema = true
	}
}

// WithSimpleSchema extracts a page by a two-column schema and returns the
// single mapping of key to parsed value.
func WithSimpleSchema(key, data string) ExtractOption {
	return func(c *extractConfig) {
		c.key = key
		c.data = []string{data}
		c.simple = true
		c.hasSchema = true
	}
}

// WithDefaultColumn names the data column whose cell is used when a row
// leaves another data column empty. It defaults to the first data column.
func WithDefaultColumn(col string) ExtractOption {
	return func(c *extractConfig) { c.defaultCol = col }
}

// WithSkipPrefixes drops free-format columns whose header starts with any
// of the prefixes, such as "#" for designer notes.
func WithSkipPrefixes(prefixes ...string) ExtractOption {
	return func(c *extractConfig) { c.skipPrefix = prefixes }
}

// Extract converts a page of cells into a Value. The first row holds column
// headers.
//
// Without a schema every remaining row becomes a mapping from header to
// parsed cell, and a page with a single row yields that mapping alone. Each
// cell is parsed as "header = {cell}", so key commands in headers apply.
// Rows empty in every used column are dropped.
func (p *Parser) Extract(ctx context.Context, page [][]string, opts ...ExtractOption) (Value, error) {
	var c extractConfig
	for _, opt := range opts {
		opt(&c)
	}

	if len(page) == 0 {
		return Value{}, ErrInvalidPage.With(slog.String("reason", "no header row"))
	}

	header := page[0]

	if !c.hasSchema {
		return p.extractFree(ctx, header, page[1:], c)
	}

	return p.extractSchema(ctx, header, page[1:], c)
}

func (p *Parser) extractFree(ctx context.Context, header []string, rows [][]string, c extractConfig) (Value, error) {
	var cols []int

	for i, h := range header {
		if h == "" || slices.ContainsFunc(c.skipPrefix, func(pre string) bool {
			return pre != "" && strings.HasPrefix(h, pre)
		}) {
			continue
		}

		cols = append(cols, i)
	}

	var out []Value

	for _, row := range filterRows(rows, cols) {
		m := NewMapping(len(cols))

		for _, col := range cols {
			if err := p.extractCell(ctx, m, header[col], cell(row, col)); err != nil {
				return Value{}, err
			}
		}

		out = append(out, MapOf(m))
	}

	p.logger.TraceContext(ctx, "extract free format",
		slog.Int("columns", len(cols)),
		slog.Int("rows", len(out)))

	if len(out) == 1 {
		return out[0], nil
	}

	return List(out...), nil
}

func (p *Parser) extractSchema(ctx context.Context, header []string, rows [][]string, c extractConfig) (Value, error) {
	if len(c.data) == 0 {
		return Value{}, ErrInvalidPage.With(slog.String("reason", "schema has no data columns"))
	}

	index := func(name string) (int, error) {
		i := slices.Index(header, name)
		if i < 0 {
			return 0, ErrColumnNotFound.With(slog.String("column", name))
		}

		return i, nil
	}

	keyCol, err := index(c.key)
	if err != nil {
		return Value{}, err
	}

	dataCols := make([]int, len(c.data))
	for i, name := range c.data {
		if dataCols[i], err = index(name); err != nil {
			return Value{}, err
		}
	}

	defName := c.defaultCol
	if defName == "" {
		defName = c.data[0]
	}

	defCol, err := index(defName)
	if err != nil {
		return Value{}, err
	}

	rows = filterRows(rows, append([]int{keyCol}, dataCols...))
	out := NewMapping(len(dataCols))

	for i, col := range dataCols {
		m := NewMapping(len(rows))

		for _, row := range rows {
			text := cell(row, col)
			if text == "" {
				text = cell(row, defCol)
			}

			if err := p.extractCell(ctx, m, cell(row, keyCol), text); err != nil {
				return Value{}, err
			}
		}

		out.Set(c.data[i], MapOf(m))
	}

	p.logger.TraceContext(ctx, "extract schema",
		slog.String("key", c.key),
		slog.Any("data", c.data),
		slog.Int("rows", len(rows)))

	if c.simple {
		v, _ := out.Get(c.data[0])

		return v, nil
	}

	return MapOf(out), nil
}

// extractCell parses "key = {text}" and merges the result into m.
func (p *Parser) extractCell(ctx context.Context, m *Mapping, key, text string) error {
	g := p.grammar

	var sb strings.Builder

	sb.WriteString(key)
	sb.WriteByte(' ')
	sb.WriteRune(g.SepDict)
	sb.WriteByte(' ')

	if strings.TrimSpace(text) == "" {
		sb.WriteRune(g.Raw)
		sb.WriteRune(g.Raw)
	} else {
		sb.WriteRune(g.BlockOpen)
		sb.WriteString(text)
		sb.WriteRune(g.BlockClose)
	}

	v, err := p.Parse(ctx, sb.String())
	if err != nil {
		return WrapError(err).With(
			slog.String("key", key),
			slog.String("cell", text))
	}

	r, ok := v.AsMap()
	if !ok {
		return ErrInvalidPage.With(
			slog.String("reason", "cell does not form a keyed value"),
			slog.String("key", key),
			slog.String("cell", text))
	}

	for k, e := range r.All() {
		m.Set(k, e)
	}

	return nil
}

// filterRows drops rows whose cells in cols are all blank.
func filterRows(rows [][]string, cols []int) [][]string {
	out := make([][]string, 0, len(rows))

	for _, row := range rows {
		if slices.ContainsFunc(cols, func(col int) bool {
			return strings.TrimSpace(cell(row, col)) != ""
		}) {
			out = append(out, row)
		}
	}

	return out
}

func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}

	return ""
}
