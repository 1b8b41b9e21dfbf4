package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/readahead"

	"github.com/ardnew/gsconf/log"
)

// DefaultMaxDepth is the default maximum bracket nesting depth.
// Users may modify this before constructing a Parser to change the default.
var DefaultMaxDepth = 100

// Parser turns intermediate-format text into Values.
//
// A Parser owns a copy of its Grammar and its own command Registry. It is
// safe for concurrent use once constructed; the registry is frozen by the
// first parse.
type Parser struct {
	grammar  Grammar
	commands *Registry
	maxDepth int
	logger   log.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithGrammar replaces the parser grammar.
func WithGrammar(g Grammar) Option {
	return func(p *Parser) { p.grammar = g }
}

// WithGrammarOptions applies options to the parser grammar.
func WithGrammarOptions(opts ...GrammarOption) Option {
	return func(p *Parser) {
		for _, opt := range opts {
			opt(&p.grammar)
		}
	}
}

// WithVersion selects the value shaping version.
func WithVersion(v Version) Option {
	return func(p *Parser) { p.grammar.Version = v }
}

// WithCommands installs a copy of r as the parser command registry.
func WithCommands(r *Registry) Option {
	return func(p *Parser) {
		if r != nil {
			p.commands = r.Clone()
		}
	}
}

// WithMaxDepth sets the maximum bracket nesting depth.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) { p.maxDepth = depth }
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// New returns a Parser using the default grammar and built-in commands with
// opts applied.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{
		grammar:  DefaultGrammar(),
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.commands == nil {
		p.commands = DefaultRegistry()
	}

	if err := p.grammar.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Grammar returns a copy of the parser grammar.
func (p *Parser) Grammar() Grammar { return p.grammar }

// Commands returns the parser command registry. Commands may be registered
// until the first parse.
func (p *Parser) Commands() *Registry { return p.commands }

// Logger returns the parser logger.
func (p *Parser) Logger() log.Logger { return p.logger }

// Parse is shorthand for New(opts...) followed by Parse.
func Parse(ctx context.Context, input string, opts ...Option) (Value, error) {
	p, err := New(opts...)
	if err != nil {
		return Value{}, err
	}

	return p.Parse(ctx, input)
}

// ParseReader reads all of r and parses it.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (Value, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return Value{}, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	p.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)))

	return p.Parse(ctx, string(data))
}

// Parse parses one cell of intermediate-format text.
//
// Empty input yields empty text. A single top-level block yields its value;
// several blocks yield a sequence of their values.
func (p *Parser) Parse(ctx context.Context, input string) (Value, error) {
	p.commands.Freeze()

	if p.grammar.IsRaw {
		return Str(input), nil
	}

	if err := p.grammar.validate(input); err != nil {
		p.logger.DebugContext(ctx, "invalid input", slog.Any("error", err))

		return Value{}, err
	}

	st := &state{p: p, ctx: ctx}

	v, err := st.blocks(strings.TrimSpace(input), 0)
	if err != nil {
		return Value{}, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.String("kind", v.Kind().String()),
		slog.Int("input_bytes", len(input)))

	return v, nil
}

// state carries one parse call.
type state struct {
	p   *Parser
	ctx context.Context
}

// blocks parses s as a list of top-level blocks.
func (st *state) blocks(s string, depth int) (Value, error) {
	if depth > st.p.maxDepth {
		return Value{}, ErrDepthExceeded.With(slog.Int("max_depth", st.p.maxDepth))
	}

	parts := st.p.grammar.splitBlocks(s)
	if len(parts) == 0 {
		return Str(""), nil
	}

	out := make([]Value, 0, len(parts))

	for _, part := range parts {
		v, err := st.block(part, depth)
		if err != nil {
			return Value{}, err
		}

		out = append(out, v)
	}

	if len(out) == 1 {
		return out[0], nil
	}

	return List(out...), nil
}

// element is one parsed member of a block.
type element struct {
	key   string
	keyed bool
	value Value
}

// block parses the elements of one block and classifies the result.
func (st *state) block(s string, depth int) (Value, error) {
	g := st.p.grammar

	var (
		elems []element
		keyed bool
	)

	for _, part := range g.splitTop(s, g.SepBase) {
		if part == "" {
			continue
		}

		e, err := st.element(part, depth)
		if err != nil {
			return Value{}, err
		}

		keyed = keyed || e.keyed
		elems = append(elems, e)
	}

	if keyed {
		m := NewMapping(len(elems))

		for i, e := range elems {
			if !e.keyed {
				e.key = strconv.Itoa(i)
			}

			m.Set(e.key, e.value)
		}

		return MapOf(m), nil
	}

	switch len(elems) {
	case 0:
		return Str(""), nil
	case 1:
		return elems[0].value, nil
	}

	seq := make([]Value, len(elems))
	for i, e := range elems {
		seq[i] = e.value
	}

	return List(seq...), nil
}

// element parses one separator-delimited member of a block.
func (st *state) element(s string, depth int) (element, error) {
	g := st.p.grammar

	if text, ok := g.unquote(s); ok {
		return element{value: Str(text)}, nil
	}

	if inner, ok := g.enclosed(s, g.BlockOpen); ok {
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return element{value: List()}, nil
		}

		v, err := st.blocks(inner, depth+1)

		return element{value: v}, err
	}

	if key, val, ok := g.cutTop(s, g.SepDict); ok {
		return st.entry(strings.TrimSpace(key), strings.TrimSpace(val), depth)
	}

	if r, _ := utf8.DecodeRuneInString(s); r == g.BlockOpen {
		v, err := st.blocks(s, depth+1)

		return element{value: v}, err
	}

	return element{value: g.parseLeaf(s)}, nil
}

// entry parses "key!cmd = value" into a keyed element, running the key's
// command chain on the value.
func (st *state) entry(rawKey, text string, depth int) (element, error) {
	g := st.p.grammar

	var (
		key   string
		chain Chain
	)

	if inner, ok := g.unquote(rawKey); ok {
		key = inner
	} else {
		base, short, hasShort := st.p.commands.TrimShorthand(rawKey)
		name, calls, _ := strings.Cut(base, string(g.SepFunc))

		key = strings.TrimSpace(name)
		chain = ParseChain(calls, g.SepFunc)

		if hasShort {
			chain = append(chain, short)
		}
	}

	if g.Version == V1 && !chain.Has(wrapCommands...) {
		chain = append(chain, CmdDList)
	}

	v, err := st.blocks(text, depth+1)
	if err != nil {
		return element{}, err
	}

	v, err = st.p.commands.Apply(v, chain)
	if err != nil {
		st.p.logger.DebugContext(st.ctx, "key command failed",
			slog.String("key", key),
			slog.Any("error", err))

		return element{}, err
	}

	return element{key: key, keyed: true, value: v}, nil
}
