package repl

import (
	"context"
	"testing"

	"github.com/ardnew/gsconf/lang"
	"github.com/ardnew/gsconf/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	p, err := lang.New()
	if err != nil {
		t.Fatal(err)
	}

	return newModel(context.Background(), p, NewHistory(""), "text", log.Logger{})
}

func TestCommandBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{"partial", "hp!in", 5, "in", 3, 5, true},
		{"empty_after_sep", "hp!", 3, "", 3, 3, true},
		{"no_sep", "hp", 2, "", 2, 2, false},
		{"inside_cell", "a = x!int, b", 9, "int", 6, 9, true},
		{"with_param", "x!get_0", 7, "get_0", 2, 7, true},
		{"mid_word", "x!int", 3, "int", 2, 5, true},
		{"leading_sep", "!int", 4, "int", 1, 4, true},
		{"after_space", "a = b", 5, "", 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end, ok := commandBounds(tt.input, tt.cursor, '!')
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd || ok != tt.wantOK {
				t.Errorf("commandBounds(%q, %d) = (%q, %d, %d, %v), want (%q, %d, %d, %v)",
					tt.input, tt.cursor, word, start, end, ok,
					tt.wantWord, tt.wantStart, tt.wantEnd, tt.wantOK)
			}
		})
	}
}

func TestFieldBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
		wantIndex int
	}{
		{"command", "he", 2, "he", 0, 2, 0},
		{"argument", "format js", 9, "js", 7, 9, 1},
		{"empty_argument", "format ", 7, "", 7, 7, 1},
		{"mid_command", "format js", 2, "format", 0, 6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end, index := fieldBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd || index != tt.wantIndex {
				t.Errorf("fieldBounds(%q, %d) = (%q, %d, %d, %d), want (%q, %d, %d, %d)",
					tt.input, tt.cursor, word, start, end, index,
					tt.wantWord, tt.wantStart, tt.wantEnd, tt.wantIndex)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name  string
		ctrl  bool
		input string
		want  string // best match, "" for none
		count int    // exact match count, -1 to skip
	}{
		{name: "command", input: "hp!flo", want: "float", count: -1},
		{name: "all_after_sep", input: "hp!", want: "dlist", count: len(lang.DefaultRegistry().Names())},
		{name: "no_sep", input: "flo", count: 0},
		{name: "ctrl_command", ctrl: true, input: "vers", want: "version", count: 1},
		{name: "ctrl_format", ctrl: true, input: "format ya", want: "yaml", count: 1},
		{name: "ctrl_other_argument", ctrl: true, input: "help ya", count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t)
			if tt.ctrl {
				m = m.switchToMode(modeCtrl)
			}

			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _ := m.computeMatches()

			if tt.count >= 0 && len(matches) != tt.count {
				t.Errorf("computeMatches(%q) returned %d matches, want %d", tt.input, len(matches), tt.count)
			}

			if tt.want == "" {
				return
			}

			if len(matches) == 0 || matches[0].Str != tt.want {
				t.Errorf("computeMatches(%q) best = %v, want %q", tt.input, matches, tt.want)
			}
		})
	}
}

func TestCycle(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("x!li")
	m.input.SetCursor(4)
	refreshMatches(&m, false)

	if len(m.matches) < 2 {
		t.Fatalf("matches = %v, want at least two", m.matches)
	}

	first := m.matches[0].Str

	m = m.cycle(1)
	if got := m.input.Value(); got != "x!"+first {
		t.Errorf("after Tab input = %q, want %q", got, "x!"+first)
	}

	m = m.cycle(-1)
	if got, want := m.input.Value(), "x!"+m.matches[len(m.matches)-1].Str; got != want {
		t.Errorf("after Shift-Tab input = %q, want %q", got, want)
	}
}
