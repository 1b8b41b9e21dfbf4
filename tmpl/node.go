package tmpl

import (
	"slices"
	"strings"

	"github.com/ardnew/gsconf/lang"
)

// Node is one element of a built template.
type Node interface {
	node()
}

// Literal is template text emitted as-is, apart from loop variables.
type Literal struct {
	Text string
}

// Placeholder is a "{% key!chain %}" substitution.
type Placeholder struct {
	Key    string     // dotted data path, or a "$" loop variable
	Chain  lang.Chain // commands applied to the resolved value
	Offset int        // byte offset of the tag in the source
}

// Control is a "{% tag key!chain %} … {% endtag %}" span.
type Control struct {
	Tag    string
	Key    string
	Chain  lang.Chain
	Body   []Node
	Offset int
}

// Comment marks where a comment was removed from the source.
type Comment struct {
	Text string
}

func (Literal) node()     {}
func (Placeholder) node() {}
func (Control) node()     {}
func (Comment) node()     {}

// Template is a built template. It is immutable and safe for concurrent
// rendering.
type Template struct {
	Name  string
	Nodes []Node

	source string
	keys   []string
}

// Source returns the text the template was built from.
func (t *Template) Source() string { return t.source }

// Keys returns the data keys referenced by placeholders and control tags, in
// order of first use. Loop variables and keys built from them are left out.
func (t *Template) Keys() []string { return slices.Clone(t.keys) }

func collectKeys(nodes []Node) []string {
	var keys []string

	var walk func([]Node)

	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch n := n.(type) {
			case Placeholder:
				keys = appendKey(keys, n.Key)
			case Control:
				keys = appendKey(keys, n.Key)
				walk(n.Body)
			}
		}
	}

	walk(nodes)

	return keys
}

func appendKey(keys []string, key string) []string {
	if key == "" || strings.Contains(key, "$") || slices.Contains(keys, key) {
		return keys
	}

	return append(keys, key)
}
