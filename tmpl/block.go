package tmpl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/ardnew/gsconf/lang"
)

// Names of the built-in control tags.
const (
	BlockIf      = "if"
	BlockForeach = "foreach"
	BlockFor     = "for"
)

// Loop variable names bound by the built-in loops, without the "$".
const (
	VarItem  = "item"
	VarIndex = "i"
)

// Block renders the body of a control tag such as "{% if key %} … {% endif %}".
type Block interface {
	Render(ctx context.Context, c *Call) (string, error)
}

// BlockFunc adapts a function to the Block interface.
type BlockFunc func(ctx context.Context, c *Call) (string, error)

// Render calls f(ctx, c).
func (f BlockFunc) Render(ctx context.Context, c *Call) (string, error) { return f(ctx, c) }

// Var binds a loop variable for one rendering of a tag body.
type Var struct {
	Name  string // without the leading "$"
	Value lang.Value
}

// Call is one evaluation of a control tag.
type Call struct {
	Tag   string
	Key   string
	Value lang.Value // the key's value with the tag's chain applied
	Found bool       // false if the key is missing and the engine is lenient

	r     *renderer
	body  []Node
	scope *scope
	depth int
}

// Body renders the tag body with vars bound over the enclosing loop
// variables.
func (c *Call) Body(ctx context.Context, vars ...Var) (string, error) {
	sc := c.scope
	for _, v := range vars {
		sc = sc.bind(v.Name, v.Value)
	}

	return c.r.render(ctx, c.body, sc, c.depth+1)
}

func builtinBlocks() map[string]Block {
	return map[string]Block{
		BlockIf:      BlockFunc(blockIf),
		BlockForeach: BlockFunc(blockForeach),
		BlockFor:     BlockFunc(blockFor),
	}
}

// blockIf renders its body when the key is truthy.
func blockIf(ctx context.Context, c *Call) (string, error) {
	if !c.Value.Truthy() {
		return "", nil
	}

	out, err := c.Body(ctx)
	if err != nil {
		return "", err
	}

	return strings.TrimLeftFunc(out, unicode.IsSpace), nil
}

// blockForeach renders its body once per element of a sequence with $item
// bound to the element.
func blockForeach(ctx context.Context, c *Call) (string, error) {
	if !c.Found {
		return "", nil
	}

	items, ok := c.Value.AsList()
	if !ok {
		return "", blockError(c, "foreach expects a sequence")
	}

	var sb strings.Builder

	for _, item := range items {
		out, err := c.Body(ctx, Var{Name: VarItem, Value: item})
		if err != nil {
			return "", err
		}

		sb.WriteString(strings.TrimLeftFunc(out, unicode.IsSpace))
	}

	return TrimTrailingComma(sb.String()), nil
}

// blockFor renders its body N times with $i bound to 0 … N-1.
func blockFor(ctx context.Context, c *Call) (string, error) {
	if !c.Found {
		return "", nil
	}

	n, ok := c.Value.AsInt()
	if !ok || n < 0 {
		return "", blockError(c, "for expects a non-negative integer")
	}

	var sb strings.Builder

	for i := range n {
		out, err := c.Body(ctx, Var{Name: VarIndex, Value: lang.Int(i)})
		if err != nil {
			return "", err
		}

		sb.WriteString(strings.TrimLeftFunc(out, unicode.IsSpace))
	}

	return TrimTrailingComma(sb.String()), nil
}

func blockError(c *Call, reason string) error {
	return ErrRender.Wrap(errors.New(reason)).With(
		slog.String("tag", c.Tag),
		slog.String("key", c.Key),
		slog.String("kind", c.Value.Kind().String()))
}

// TrimTrailingComma removes one trailing comma from s, along with any
// whitespace after it. Loops use it so that a body ending in "," joins
// into a valid list.
func TrimTrailingComma(s string) string {
	t := strings.TrimRightFunc(s, unicode.IsSpace)
	if u, ok := strings.CutSuffix(t, ","); ok {
		return u
	}

	return s
}
