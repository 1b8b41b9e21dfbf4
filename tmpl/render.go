package tmpl

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ardnew/gsconf/lang"
)

// renderer carries one Render call.
type renderer struct {
	e    *Engine
	data lang.Value
}

func (r *renderer) render(ctx context.Context, nodes []Node, sc *scope, depth int) (string, error) {
	if depth > r.e.maxDepth {
		return "", lang.ErrDepthExceeded.With(slog.Int("max_depth", r.e.maxDepth))
	}

	if err := ctx.Err(); err != nil {
		return "", ErrRender.Wrap(err)
	}

	var sb strings.Builder

	for _, n := range nodes {
		switch n := n.(type) {
		case Literal:
			s, err := r.literal(n.Text, sc)
			if err != nil {
				return "", err
			}

			sb.WriteString(s)

		case Placeholder:
			v, _, err := r.resolve(ctx, n.Key, n.Chain, sc)
			if err != nil {
				return "", wrapAt(err, n.Key, n.Offset)
			}

			sb.WriteString(r.format(v))

		case Control:
			s, err := r.control(ctx, n, sc, depth)
			if err != nil {
				return "", err
			}

			sb.WriteString(s)
		}
	}

	return sb.String(), nil
}

func (r *renderer) control(ctx context.Context, n Control, sc *scope, depth int) (string, error) {
	v, found, err := r.resolve(ctx, n.Key, n.Chain, sc)
	if err != nil {
		return "", wrapAt(err, n.Key, n.Offset)
	}

	c := &Call{
		Tag:   n.Tag,
		Key:   n.Key,
		Value: v,
		Found: found,
		r:     r,
		body:  n.Body,
		scope: sc,
		depth: depth,
	}

	out, err := r.e.blocks[n.Tag].Render(ctx, c)
	if err != nil {
		return "", err
	}

	return out, nil
}

// resolve looks up key, binding loop variables first, and applies chain.
// A missing key yields empty text unless the engine is strict.
func (r *renderer) resolve(
	ctx context.Context,
	key string,
	chain lang.Chain,
	sc *scope,
) (lang.Value, bool, error) {
	var (
		v  lang.Value
		ok bool
	)

	if name, path, isVar := splitVar(key); isVar {
		if bound, found := sc.lookup(name); found {
			v, ok = bound.Lookup(path)
		}
	} else {
		key = sc.substitute(key)
		v, ok = r.data.Lookup(key)
	}

	if !ok {
		if r.e.strict {
			return lang.Value{}, false, &MissingKeyError{Key: key}
		}

		r.e.logger.DebugContext(ctx, "missing key", slog.String("key", key))

		return lang.Str(""), false, nil
	}

	if len(chain) == 0 {
		return v, true, nil
	}

	calls := make(lang.Chain, len(chain))
	for i, call := range chain {
		calls[i] = sc.substitute(call)
	}

	v, err := r.e.parser.Commands().Apply(v, calls)
	if err != nil {
		return lang.Value{}, false, ErrRender.Wrap(err)
	}

	return v, true, nil
}

// format writes a placeholder value: text as a JSON string unless the
// engine strips quotes, everything else in its canonical form.
func (r *renderer) format(v lang.Value) string {
	if s, ok := v.AsText(); ok && !v.IsVerbatim() && !r.e.strip {
		return lang.QuoteJSON(s)
	}

	return v.String()
}

// literal substitutes bound loop variables in text. A variable may carry a
// command chain, as in "$item!string".
func (r *renderer) literal(text string, sc *scope) (string, error) {
	if sc == nil || !strings.Contains(text, "$") {
		return text, nil
	}

	var err error

	out := r.e.loopVar.ReplaceAllStringFunc(text, func(m string) string {
		if err != nil {
			return m
		}

		sub := r.e.loopVar.FindStringSubmatch(m)

		v, ok := sc.lookup(sub[1])
		if !ok {
			return m
		}

		chain := lang.ParseChain(strings.TrimPrefix(sub[2], string(r.e.sepFunc)), r.e.sepFunc)

		if v, err = r.e.parser.Commands().Apply(v, chain); err != nil {
			err = ErrRender.Wrap(err).With(slog.String("variable", m))

			return m
		}

		return v.String()
	})

	return out, err
}

// loopVarPattern matches "$name" followed by any commands joined with sep.
func loopVarPattern(sep rune) *regexp.Regexp {
	s := regexp.QuoteMeta(string(sep))

	return regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)((?:` + s + `[A-Za-z0-9_]+)*)`)
}

func wrapAt(err error, key string, offset int) error {
	if e, ok := err.(*lang.Error); ok {
		return e.With(slog.String("key", key), slog.Int("offset", offset))
	}

	return err
}
