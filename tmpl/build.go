package tmpl

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ardnew/gsconf/lang"
)

// commentTag opens a span that is removed from the output along with any
// tags inside it.
const commentTag = "comment"

// tagPattern matches "{# … #}" comments and "{% name [param] %}" tags.
var tagPattern = regexp.MustCompile(
	`(?s)\{#.*?#\}|\{%\s*([A-Za-z_][A-Za-z0-9_]*)(?:\s+([^%]*?))?\s*%\}`,
)

type tokenKind uint8

const (
	tokText tokenKind = iota
	tokComment
	tokOpen
	tokClose
)

type token struct {
	kind   tokenKind
	text   string // source text, or the parameter of an open tag
	tag    string
	offset int
}

// builder turns template source into nodes for one engine.
type builder struct {
	e *Engine
}

func (b builder) build(ctx context.Context, source string) ([]Node, error) {
	toks, err := b.lex(source)
	if err != nil {
		return nil, err
	}

	nodes, err := b.nodes(toks, 0)
	if err != nil {
		b.e.logger.DebugContext(ctx, "template build failed", slog.Any("error", err))

		return nil, err
	}

	b.e.logger.TraceContext(ctx, "template built",
		slog.Int("tokens", len(toks)),
		slog.Int("nodes", len(nodes)))

	return nodes, nil
}

// lex splits source into text, comment and control tag tokens. A bare tag
// that names no registered block is left in the text for placeholder
// matching unless a matching end tag follows it.
func (b builder) lex(source string) ([]token, error) {
	var (
		toks []token
		text int // start of pending text
	)

	flush := func(end int) {
		if end > text {
			toks = append(toks, token{kind: tokText, text: source[text:end], offset: text})
		}
	}

	for pos := 0; pos < len(source); {
		loc := tagPattern.FindStringSubmatchIndex(source[pos:])
		if loc == nil {
			break
		}

		start, end := pos+loc[0], pos+loc[1]

		if source[start+1] == '#' {
			flush(start)
			toks = append(toks, token{kind: tokComment, text: source[start:end], offset: start})
			pos = skipNewline(source, end)
			text = pos

			continue
		}

		name := source[pos+loc[2] : pos+loc[3]]

		var param string
		if loc[4] >= 0 {
			param = strings.TrimSpace(source[pos+loc[4] : pos+loc[5]])
		}

		switch {
		case name == commentTag:
			stop, ok := skipComment(source, end)
			if !ok {
				return nil, syntaxError("unclosed tag", commentTag, start)
			}

			flush(start)
			toks = append(toks, token{kind: tokComment, text: source[start:stop], offset: start})
			pos = skipNewline(source, stop)
			text = pos

		case name == "end"+commentTag:
			return nil, syntaxError("unexpected closing tag", name, start)

		case b.e.hasBlock(name):
			flush(start)
			toks = append(toks, token{kind: tokOpen, text: param, tag: name, offset: start})
			pos, text = end, end

		case strings.HasPrefix(name, "end") && b.e.hasBlock(name[3:]):
			flush(start)
			toks = append(toks, token{kind: tokClose, tag: name[3:], offset: start})
			pos = skipNewline(source, end)
			text = pos

		case param != "" || hasCloseTag(source[end:], name):
			return nil, syntaxError("unknown tag", name, start)

		default:
			pos = end
		}
	}

	flush(len(source))

	return toks, nil
}

// hasCloseTag reports whether s contains "{% end<name> %}".
func hasCloseTag(s, name string) bool {
	for _, m := range tagPattern.FindAllStringSubmatch(s, -1) {
		if m[1] == "end"+name {
			return true
		}
	}

	return false
}

// skipComment returns the end of the "{% endcomment %}" matching a comment
// tag that ends at pos. Nested comment tags are counted.
func skipComment(source string, pos int) (int, bool) {
	depth := 1

	for pos < len(source) {
		loc := tagPattern.FindStringSubmatchIndex(source[pos:])
		if loc == nil {
			break
		}

		end := pos + loc[1]

		if loc[2] >= 0 {
			switch source[pos+loc[2] : pos+loc[3]] {
			case commentTag:
				depth++
			case "end" + commentTag:
				if depth--; depth == 0 {
					return end, true
				}
			}
		}

		pos = end
	}

	return 0, false
}

func skipNewline(s string, pos int) int {
	switch {
	case strings.HasPrefix(s[pos:], "\r\n"):
		return pos + 2
	case strings.HasPrefix(s[pos:], "\n"):
		return pos + 1
	default:
		return pos
	}
}

// nodes builds the node list of toks. The close of an open tag is the first
// close of the same kind that brings that kind's counter back to zero.
func (b builder) nodes(toks []token, depth int) ([]Node, error) {
	if depth > b.e.maxDepth {
		return nil, lang.ErrDepthExceeded.With(slog.Int("max_depth", b.e.maxDepth))
	}

	var nodes []Node

	for i := 0; i < len(toks); i++ {
		t := toks[i]

		switch t.kind {
		case tokText:
			nodes = b.text(nodes, t)

		case tokComment:
			nodes = append(nodes, Comment{Text: t.text})

		case tokClose:
			return nil, syntaxError("unexpected closing tag", "end"+t.tag, t.offset)

		case tokOpen:
			j := matchClose(toks, i)
			if j < 0 {
				return nil, syntaxError("unclosed tag", t.tag, t.offset)
			}

			key, chain := b.split(t.text)
			if key == "" {
				return nil, syntaxError("missing key in tag", t.tag, t.offset)
			}

			body, err := b.nodes(toks[i+1:j], depth+1)
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, Control{
				Tag:    t.tag,
				Key:    key,
				Chain:  chain,
				Body:   body,
				Offset: t.offset,
			})

			i = j
		}
	}

	return nodes, nil
}

func matchClose(toks []token, open int) int {
	tag := toks[open].tag
	depth := 0

	for i := open; i < len(toks); i++ {
		if toks[i].tag != tag {
			continue
		}

		switch toks[i].kind {
		case tokOpen:
			depth++
		case tokClose:
			if depth--; depth == 0 {
				return i
			}
		}
	}

	return -1
}

// text splits a text token into literals and placeholders.
func (b builder) text(nodes []Node, t token) []Node {
	pos := 0

	for _, loc := range b.e.pattern.FindAllStringSubmatchIndex(t.text, -1) {
		if loc[2] < 0 {
			continue
		}

		key, chain := b.split(t.text[loc[2]:loc[3]])
		if key == "" {
			continue
		}

		if loc[0] > pos {
			nodes = append(nodes, Literal{Text: t.text[pos:loc[0]]})
		}

		nodes = append(nodes, Placeholder{Key: key, Chain: chain, Offset: t.offset + loc[0]})
		pos = loc[1]
	}

	if pos < len(t.text) {
		nodes = append(nodes, Literal{Text: t.text[pos:]})
	}

	return nodes
}

// split separates "key!cmd!cmd" into its key and command chain.
func (b builder) split(s string) (string, lang.Chain) {
	sep := b.e.parser.Grammar().SepFunc
	key, calls, _ := strings.Cut(strings.TrimSpace(s), string(sep))

	return strings.TrimSpace(key), lang.ParseChain(calls, sep)
}
