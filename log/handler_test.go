package log

import (
	"bytes"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
)

var ansi = regexp.MustCompile("\033\\[[0-9;]*m")

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

type point struct{ x, y int }

func (p point) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("x", p.x), slog.Int("y", p.y))
}

func TestPrettyHandler_Text(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(true), WithTimeLayout("none")).
		With(slog.String("component", "tmpl")).
		WithGroup("render")

	l.Warn("slow", slog.Any("at", point{1, 2}), slog.Bool("strict", false))

	got := plain(buf.String())
	want := "level=WARN msg=slow component=tmpl render.at.x=1 render.at.y=2 render.strict=false\n"

	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPrettyHandler_JSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(true), WithFormat(FormatJSON), WithTimeLayout("none"))
	l.Error("failed", slog.Any("error", errors.New("bad cell")), slog.Float64("ratio", 0.5))

	got := plain(buf.String())
	want := strings.Join([]string{
		`{`,
		`  "level": "ERROR",`,
		`  "msg": "failed",`,
		`  "error": "bad cell",`,
		`  "ratio": 0.5`,
		`}`,
	}, "\n") + "\n"

	if got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithPretty(true), WithLevel(LevelError)).Warn("hidden")

	if buf.Len() != 0 {
		t.Errorf("wrote %q below level", buf.String())
	}
}
