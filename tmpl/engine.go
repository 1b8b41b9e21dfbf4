package tmpl

import (
	"context"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ardnew/gsconf/lang"
	"github.com/ardnew/gsconf/log"
)

// DefaultPattern matches "{% key!chain %}" placeholders. Its one capture
// group holds the key and chain.
const DefaultPattern = `\{%\s*([a-zA-Z0-9_!.$]+)\s*%\}`

// Output selects what [Engine.RenderValue] does with rendered text.
type Output int

const (
	// OutputText returns rendered text as a text value.
	OutputText Output = iota
	// OutputBlock parses rendered text as intermediate-format cells.
	OutputBlock
	// OutputJSON decodes rendered text as JSON.
	OutputJSON
)

var outputNames = [...]string{
	OutputText:  "text",
	OutputBlock: "block",
	OutputJSON:  "json",
}

// String returns the output name.
func (o Output) String() string {
	if o < 0 || int(o) >= len(outputNames) {
		return "unknown"
	}

	return outputNames[o]
}

// MarshalText implements encoding.TextMarshaler.
func (o Output) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Output) UnmarshalText(text []byte) error {
	i := slices.Index(outputNames[:], strings.ToLower(strings.TrimSpace(string(text))))
	if i < 0 {
		return ErrInvalidOutput.With(slog.String("output", string(text)))
	}

	*o = Output(i)

	return nil
}

// Engine builds and renders templates.
//
// An Engine accepts block and command registrations until it builds or
// renders its first template. After that it is safe for concurrent use.
type Engine struct {
	parser     *lang.Parser
	parserOpts []lang.Option
	pattern    *regexp.Regexp
	patternSrc string
	loopVar    *regexp.Regexp
	sepFunc    rune
	strict     bool
	strip      bool
	output     Output
	maxDepth   int
	logger     log.Logger
	searchPath []string

	mu       sync.Mutex
	once     sync.Once
	frozen   atomic.Bool
	blocks   map[string]Block
	cache    sync.Map
	optsHash uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithPattern replaces the placeholder pattern. The expression must have
// exactly one capture group holding "key!chain".
func WithPattern(expr string) Option {
	return func(e *Engine) { e.patternSrc = expr }
}

// WithStrict makes missing keys fail with a [*MissingKeyError] instead of
// rendering as empty text.
func WithStrict(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

// WithStrip writes text placeholders without JSON quotes.
func WithStrip(strip bool) Option {
	return func(e *Engine) { e.strip = strip }
}

// WithOutput selects the result of [Engine.RenderValue].
func WithOutput(o Output) Option {
	return func(e *Engine) { e.output = o }
}

// WithParser sets the parser used for key commands and block output.
func WithParser(p *lang.Parser) Option {
	return func(e *Engine) { e.parser = p }
}

// WithCommands installs a copy of r as the command registry of the engine's
// parser. It has no effect together with WithParser.
func WithCommands(r *lang.Registry) Option {
	return func(e *Engine) { e.parserOpts = append(e.parserOpts, lang.WithCommands(r)) }
}

// WithMaxDepth bounds the nesting of control tags.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) { e.maxDepth = depth }
}

// WithLogger sets the structured logger for build and render events.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithBlock registers a control tag.
func WithBlock(name string, b Block) Option {
	return func(e *Engine) { e.blocks[name] = b }
}

// WithSearchPath sets the directories [Engine.LoadFile] searches for
// relative paths. The default is [SearchPath].
func WithSearchPath(dirs ...string) Option {
	return func(e *Engine) { e.searchPath = slices.Clone(dirs) }
}

// New returns an Engine with the built-in blocks and opts applied.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		patternSrc: DefaultPattern,
		maxDepth:   lang.DefaultMaxDepth,
		blocks:     builtinBlocks(),
	}

	for _, opt := range opts {
		opt(e)
	}

	for name, b := range e.blocks {
		if err := checkBlockName(name, b); err != nil {
			return nil, err
		}
	}

	re, err := regexp.Compile(e.patternSrc)
	if err != nil {
		return nil, ErrInvalidPattern.Wrap(err)
	}

	if re.NumSubexp() != 1 {
		return nil, ErrInvalidPattern.With(
			slog.String("pattern", e.patternSrc),
			slog.Int("groups", re.NumSubexp()))
	}

	e.pattern = re

	if e.parser == nil {
		popts := append([]lang.Option{lang.WithLogger(e.logger)}, e.parserOpts...)

		if e.parser, err = lang.New(popts...); err != nil {
			return nil, err
		}
	}

	e.sepFunc = e.parser.Grammar().SepFunc
	e.loopVar = loopVarPattern(e.sepFunc)

	return e, nil
}

// Parser returns the parser used for key commands and block output.
func (e *Engine) Parser() *lang.Parser { return e.parser }

// RegisterCommand adds a key command to the engine's parser.
func (e *Engine) RegisterCommand(name string, c lang.Command) error {
	return e.parser.Commands().Register(name, c)
}

// RegisterBlock adds or replaces the control tag called name.
func (e *Engine) RegisterBlock(name string, b Block) error {
	if err := checkBlockName(name, b); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frozen.Load() {
		return ErrBlockFrozen.With(slog.String("block", name))
	}

	e.blocks[name] = b

	return nil
}

// Blocks returns the registered control tag names in sorted order.
func (e *Engine) Blocks() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Sorted(maps.Keys(e.blocks))
}

var blockName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkBlockName(name string, b Block) error {
	switch {
	case b == nil:
		return ErrTemplateSyntax.With(slog.String("block", name), slog.String("reason", "nil block"))
	case !blockName.MatchString(name):
		return ErrTemplateSyntax.With(slog.String("block", name), slog.String("reason", "invalid name"))
	case name == commentTag || strings.HasPrefix(name, "end"):
		return ErrTemplateSyntax.With(slog.String("block", name), slog.String("reason", "reserved name"))
	}

	return nil
}

// freeze stops registrations. Blocks are read without locking afterwards.
func (e *Engine) freeze() {
	e.once.Do(func() {
		e.mu.Lock()
		e.frozen.Store(true)
		e.mu.Unlock()

		e.parser.Commands().Freeze()
		e.optsHash = e.hashOptions()
	})
}

func (e *Engine) hasBlock(name string) bool {
	_, ok := e.blocks[name]

	return ok
}

// Build parses source into a template. Templates built from the same source
// share one cached node tree.
func (e *Engine) Build(ctx context.Context, name, source string) (*Template, error) {
	e.freeze()

	nodes, keys, err := e.cached(ctx, source)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("template", name))
	}

	return &Template{Name: name, Nodes: nodes, source: source, keys: keys}, nil
}

// Render renders t with data. Placeholders and control tags resolve their
// keys as dotted paths into data.
func (e *Engine) Render(ctx context.Context, t *Template, data lang.Value) (string, error) {
	e.freeze()

	r := &renderer{e: e, data: data}

	out, err := r.render(ctx, t.Nodes, nil, 0)
	if err != nil {
		e.logger.DebugContext(ctx, "render failed",
			slog.String("template", t.Name),
			slog.Any("error", err))

		return "", err
	}

	e.logger.TraceContext(ctx, "render complete",
		slog.String("template", t.Name),
		slog.Int("output_bytes", len(out)))

	return out, nil
}

// RenderValue renders t and converts the text according to the engine's
// [Output] setting.
func (e *Engine) RenderValue(ctx context.Context, t *Template, data lang.Value) (lang.Value, error) {
	out, err := e.Render(ctx, t, data)
	if err != nil {
		return lang.Value{}, err
	}

	switch e.output {
	case OutputBlock:
		v, err := e.parser.Parse(ctx, out)
		if err != nil {
			return lang.Value{}, ErrRender.Wrap(err).With(slog.String("output", e.output.String()))
		}

		return v, nil

	case OutputJSON:
		v, err := lang.FromJSON([]byte(out))
		if err != nil {
			return lang.Value{}, ErrRender.Wrap(err).With(slog.String("output", e.output.String()))
		}

		return v, nil

	default:
		return lang.Str(out), nil
	}
}

// Execute builds source and renders it with data.
func (e *Engine) Execute(ctx context.Context, name, source string, data lang.Value) (string, error) {
	t, err := e.Build(ctx, name, source)
	if err != nil {
		return "", err
	}

	return e.Render(ctx, t, data)
}
