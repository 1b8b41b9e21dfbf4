package lang

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]byte(`{"b": 1, "a": [true, null, "x", 1.5, 2.0], "c": {}}`))
	if err != nil {
		t.Fatal(err)
	}

	want := Map(
		kv("b", Int(1)),
		kv("a", List(Bool(true), Null(), Str("x"), Float(1.5), Float(2))),
		kv("c", Map()),
	)

	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("FromJSON() mismatch (-want +got):\n%s", diff)
	}

	if f, _ := mustIndex(t, v, "a", 4); !f.IsFloat() {
		t.Error("2.0 decoded as integer")
	}
}

func mustIndex(t *testing.T, v Value, key string, i int) (Value, bool) {
	t.Helper()

	s, ok := v.Get(key)
	if !ok {
		t.Fatalf("missing key %q", key)
	}

	return s.Index(i)
}

func TestFromJSON_Errors(t *testing.T) {
	for _, in := range []string{`{} {}`, `{"a": }`, ``, `[1,`} {
		if _, err := FromJSON([]byte(in)); !errors.Is(err, ErrDecode) {
			t.Errorf("FromJSON(%q) error = %v, want ErrDecode", in, err)
		}
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	v := Map(
		kv("name", Str("Iron \"Sword\"\n")),
		kv("stats", List(Int(1), Float(2), Null())),
	)

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}

	// encoding/json compacts marshaler output.
	want := `{"name":"Iron \"Sword\"\n","stats":[1,2.0,null]}`
	if string(data) != want {
		t.Errorf("json.Marshal() = %s, want %s", data, want)
	}

	var back Value
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(v, back); diff != "" {
		t.Errorf("unmarshal mismatch (-want +got):\n%s", diff)
	}
}

func TestQuoteJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{"<tag>&", `"<tag>&"`},
		{"tab\there", `"tab\there"`},
		{"\x01", `"\u0001"`},
		{"héllo", `"héllo"`},
	}

	for _, tt := range tests {
		if got := QuoteJSON(tt.in); got != tt.want {
			t.Errorf("QuoteJSON(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	v := Map(
		kv("zeta", Int(1)),
		kv("alpha", List(Str("wool"), Float(1.5), Bool(false))),
		kv("mid", Map(kv("y", Null()), kv("x", Str("10")))),
	)

	data, err := yaml.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}

	if i, j := strings.Index(string(data), "zeta"), strings.Index(string(data), "alpha"); i > j {
		t.Errorf("key order lost:\n%s", data)
	}

	back, err := FromYAML(data)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(v, back); diff != "" {
		t.Errorf("YAML round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromNative(t *testing.T) {
	type custom int8

	got, err := FromNative(map[string]any{
		"b": []int{1, 2},
		"a": custom(3),
		"c": uint16(4),
		"d": map[string]float64{"x": 0.5},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := Map(
		kv("a", Int(3)),
		kv("b", ints(1, 2)),
		kv("c", Int(4)),
		kv("d", Map(kv("x", Float(0.5)))),
	)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromNative() mismatch (-want +got):\n%s", diff)
	}

	if _, err := FromNative(make(chan int)); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("FromNative(chan) error = %v, want ErrUnsupportedType", err)
	}
}
