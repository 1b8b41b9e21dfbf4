package tmpl

import (
	"regexp"
	"strings"

	"github.com/ardnew/gsconf/lang"
)

// scope is a chain of loop variable bindings. Inner bindings shadow outer
// ones; the nil scope binds nothing.
type scope struct {
	parent *scope
	name   string
	value  lang.Value
}

func (s *scope) bind(name string, v lang.Value) *scope {
	return &scope{parent: s, name: name, value: v}
}

func (s *scope) lookup(name string) (lang.Value, bool) {
	for c := s; c != nil; c = c.parent {
		if c.name == name {
			return c.value, true
		}
	}

	return lang.Value{}, false
}

var varPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// substitute replaces each bound "$name" in s with the text of its value.
func (s *scope) substitute(text string) string {
	if s == nil || !strings.Contains(text, "$") {
		return text
	}

	return varPattern.ReplaceAllStringFunc(text, func(m string) string {
		if v, ok := s.lookup(m[1:]); ok {
			return v.String()
		}

		return m
	})
}

// splitVar splits a key of the form "$name" or "$name.path".
func splitVar(key string) (name, path string, ok bool) {
	loc := varPattern.FindStringIndex(key)
	if loc == nil || loc[0] != 0 {
		return "", "", false
	}

	name, rest := key[1:loc[1]], key[loc[1]:]

	switch {
	case rest == "":
		return name, "", true
	case rest[0] == '.':
		return name, rest[1:], true
	default:
		return "", "", false
	}
}
