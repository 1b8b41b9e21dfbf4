package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{Line: "a = 1", Mode: modeEval},
		{Line: "format json", Mode: modeCtrl},
		{Line: "b = 2", Mode: modeEval},
	} {
		if _, err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q) error = %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:a = 1\nC:format json\nE:b = 2\n"; string(data) != want {
		t.Errorf("history file = %q, want %q", data, want)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(h.Entries(), loaded.Entries()); diff != "" {
		t.Errorf("reloaded history mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Dedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "b", "a"} {
		if _, err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{{Line: "b"}, {Line: "a"}}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:b\nE:a\n"; string(data) != want {
		t.Errorf("history file = %q, want %q", data, want)
	}
}

func TestHistory_SameLineDifferentMode(t *testing.T) {
	h := NewHistory("")

	_, _ = h.Add("clear", modeEval)
	_, _ = h.Add("clear", modeCtrl)

	if got := h.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestHistory_LoadUnprefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	if err := os.WriteFile(path, []byte("a = 1\n\nC:quit\nE:b\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{Line: "a = 1", Mode: modeEval},
		{Line: "quit", Mode: modeCtrl},
		{Line: "b", Mode: modeEval},
	}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_MemoryOnly(t *testing.T) {
	h := NewHistory("")

	if _, err := h.Add("  ", modeEval); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 0 {
		t.Errorf("blank line recorded")
	}

	if _, err := h.Add("x = 1", modeEval); err != nil {
		t.Fatal(err)
	}

	e, err := h.Entry(0)
	if err != nil {
		t.Fatal(err)
	}

	if e.Line != "x = 1" {
		t.Errorf("Entry(0) = %q, want %q", e.Line, "x = 1")
	}

	if _, err := h.Entry(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(1) error = %v, want ErrOutOfBounds", err)
	}
}

func TestHistory_Cap(t *testing.T) {
	h := NewHistory("")

	for i := range maxHistory + 5 {
		_, _ = h.Add("x = "+strconv.Itoa(i), modeEval)
	}

	if got := h.Len(); got != maxHistory {
		t.Errorf("Len() = %d, want %d", got, maxHistory)
	}
}

func TestLastCell(t *testing.T) {
	h := NewHistory("")
	if got := lastCell(h); got != "" {
		t.Errorf("lastCell(empty) = %q", got)
	}

	_, _ = h.Add("a = 1", modeEval)
	_, _ = h.Add("format json", modeCtrl)

	if got := lastCell(h); got != "a = 1" {
		t.Errorf("lastCell() = %q, want %q", got, "a = 1")
	}
}
