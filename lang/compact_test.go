package lang

import (
	"bytes"
	"testing"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		opts []CompactOption
		want string
	}{
		{
			name: "scalar",
			v:    Str("wool"),
			want: `"wool"`,
		},
		{
			name: "inline scalar list",
			v:    List(Str("a"), Int(1)),
			want: `["a", 1]`,
		},
		{
			name: "empty mapping",
			v:    Map(),
			want: `{}`,
		},
		{
			name: "nested layout",
			v: Map(
				kv("name", Str("x")),
				kv("stats", Map(kv("hp", Int(1)), kv("sp", Int(2)))),
				kv("tags", strs("a", "b")),
			),
			want: "{\n" +
				"    \"name\": \"x\",\n" +
				"    \"stats\": { \"hp\": 1, \"sp\": 2 },\n" +
				"    \"tags\": [\"a\", \"b\"]\n" +
				"}",
		},
		{
			name: "sequence of mappings",
			v:    List(Map(kv("a", Int(1))), Map(kv("b", Null()))),
			opts: []CompactOption{WithCompactIndent(2)},
			want: "[\n" +
				"  { \"a\": 1 },\n" +
				"  { \"b\": null }\n" +
				"]",
		},
		{
			name: "inline disabled",
			v:    ints(1, 2),
			opts: []CompactOption{WithCompactInline(false), WithCompactIndent(1)},
			want: "[\n 1,\n 2\n]",
		},
		{
			name: "mapping over item limit",
			v:    Map(kv("a", Int(1)), kv("b", Int(2))),
			opts: []CompactOption{WithCompactMaxItems(1), WithCompactIndent(2)},
			want: "{\n  \"a\": 1,\n  \"b\": 2\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compact(tt.v, tt.opts...); got != tt.want {
				t.Errorf("Compact() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestWriteCompact(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteCompact(&buf, ints(1, 2)); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "[1, 2]" {
		t.Errorf("WriteCompact() = %q", got)
	}
}
