package log

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestOptions_SetFields(t *testing.T) {
	c := apply(defaults(nil),
		WithLevel(LevelDebug),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(true),
		WithOutput(nil),
	)

	if c.level != LevelDebug {
		t.Errorf("level = %v, want debug", c.level)
	}

	if c.format != FormatJSON {
		t.Errorf("format = %v, want json", c.format)
	}

	if !c.caller || !c.pretty {
		t.Errorf("caller = %v, pretty = %v, want both enabled", c.caller, c.pretty)
	}

	if c.output != io.Discard {
		t.Error("nil output not replaced with io.Discard")
	}
}

func TestOptions_DoNotAlias(t *testing.T) {
	base := defaults(nil)
	_ = WithLevel(LevelError)(base)

	if base.level != DefaultLevel {
		t.Errorf("option changed its input: level = %v", base.level)
	}
}

func TestMakeFormatTimeFunc(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"rfc3339", "RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc3339 nano with punctuation", "rfc-3339-nano", "2023-10-15T14:30:45.123456789Z"},
		{"kitchen", "Kitchen", "2:30PM"},
		{"date only", "DateOnly", "2023-10-15"},
		{"millisecond stamp", "ms", "Oct 15 14:30:45.123"},
		{"custom layout kept verbatim", "  2006/01/02", "  2023/10/15"},
		{"none", "none", ""},
		{"empty", "", ""},
		{"whitespace", " \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := makeFormatTimeFunc(tt.layout)(now); got != tt.want {
				t.Errorf("format(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestConfig_Handler_UnknownFormatDiscards(t *testing.T) {
	var sb strings.Builder

	l := Make(&sb, WithFormat(Format(9)))
	l.Error("dropped")

	if sb.Len() != 0 {
		t.Errorf("unknown format wrote %q", sb.String())
	}
}

func BenchmarkFormatTime(b *testing.B) {
	format := makeFormatTimeFunc("RFC3339Nano")
	now := time.Now()

	for b.Loop() {
		_ = format(now)
	}
}
