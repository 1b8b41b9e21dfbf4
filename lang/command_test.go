package lang

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()
	if err := r.RegisterFunc("get_max", cmdDummy); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		call  string
		param Param
		err   bool
	}{
		{call: "list"},
		{call: "[]"},
		{call: "get_2", param: Param{Text: "2", Valid: true}},
		{call: "get_max"},
		{call: "get_max_hp", param: Param{Text: "hp", Valid: true}},
		{call: "get_", err: true},
		{call: "nope", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.call, func(t *testing.T) {
			_, p, err := r.Lookup(tt.call)
			if (err != nil) != tt.err {
				t.Fatalf("Lookup(%q) error = %v, want error %v", tt.call, err, tt.err)
			}

			if p != tt.param {
				t.Errorf("Lookup(%q) param = %+v, want %+v", tt.call, p, tt.param)
			}
		})
	}

	if !r.Frozen() {
		t.Error("registry not frozen after lookup")
	}
}

func TestRegistry_Shorthands(t *testing.T) {
	r := DefaultRegistry()

	got := r.Shorthands()
	want := []string{"(!)", "()", "[]", "{}"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Shorthands() mismatch (-want +got):\n%s", diff)
	}

	base, name, ok := r.TrimShorthand("drops(!)")
	if !ok || base != "drops" || name != CmdFList {
		t.Errorf("TrimShorthand() = %q, %q, %v", base, name, ok)
	}
}

func TestRegistry_Clone(t *testing.T) {
	r := DefaultRegistry()
	r.Freeze()

	c := r.Clone()
	if c.Frozen() {
		t.Fatal("clone is frozen")
	}

	if err := c.RegisterShorthand("<>", "wrap"); err != nil {
		t.Fatal(err)
	}

	if _, ok := r.Shorthand("<>"); ok {
		t.Error("registration leaked into source registry")
	}

	if err := r.Register("x", CommandFunc(cmdDummy)); !errors.Is(err, ErrRegistryFrozen) {
		t.Errorf("Register() on frozen registry error = %v", err)
	}
}

func TestParseChain(t *testing.T) {
	c := ParseChain("list! get_0 !!json", '!')

	if diff := cmp.Diff(Chain{"list", "get_0", "json"}, c); diff != "" {
		t.Errorf("ParseChain() mismatch (-want +got):\n%s", diff)
	}

	if !c.Has("get") || c.Has("flist") {
		t.Errorf("Has() mismatch for %v", c)
	}

	if got := c.String('!'); got != "list!get_0!json" {
		t.Errorf("String() = %q", got)
	}
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name  string
		chain Chain
		in    Value
		want  Value
		err   bool
	}{
		{name: "list wraps scalar", chain: Chain{"list"}, in: Int(1), want: ints(1)},
		{name: "list keeps sequence", chain: Chain{"list"}, in: ints(1), want: ints(1)},
		{name: "dlist wraps mapping", chain: Chain{"dlist"}, in: Map(), want: List(Map())},
		{name: "dlist keeps scalar", chain: Chain{"dlist"}, in: Int(1), want: Int(1)},
		{name: "flist always wraps", chain: Chain{"flist"}, in: ints(1), want: List(ints(1))},
		{name: "extract unwraps", chain: Chain{"extract"}, in: ints(4), want: Int(4)},
		{name: "extract keeps longer", chain: Chain{"extract"}, in: ints(4, 5), want: ints(4, 5)},
		{name: "extract with index", chain: Chain{"extract_1"}, in: ints(4, 5), want: Int(5)},
		{name: "get mapping key", chain: Chain{"get_hp"}, in: Map(kv("hp", Int(9))), want: Int(9)},
		{name: "get missing key", chain: Chain{"get_mp"}, in: Map(kv("hp", Int(9))), err: true},
		{name: "get scalar", chain: Chain{"get_0"}, in: Int(1), err: true},
		{name: "wrap scalar list", chain: Chain{"wrap"}, in: ints(1, 2), want: List(ints(1, 2))},
		{name: "wrap boxed list", chain: Chain{"wrap"}, in: List(ints(1)), want: List(ints(1))},
		{name: "float of text", chain: Chain{"float"}, in: Str(" 2.5 "), want: Float(2.5)},
		{name: "int of bool", chain: Chain{"int"}, in: Bool(true), want: Int(1)},
		{name: "int of sequence", chain: Chain{"int"}, in: ints(1), err: true},
		{name: "string of float", chain: Chain{"string"}, in: Float(2), want: Str("2.0")},
		{name: "json of text", chain: Chain{"json"}, in: Str("a\"b"), want: Str(`"a\"b"`)},
		{name: "null of empty", chain: Chain{"null"}, in: Str(""), want: Null()},
		{name: "dummy", chain: Chain{"dummy"}, in: Int(5), want: Int(5)},
	}

	r := DefaultRegistry()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Apply(tt.in, tt.chain)
			if tt.err {
				if !errors.Is(err, ErrCommand) {
					t.Fatalf("Apply() error = %v, want ErrCommand", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuiltins_JSONIsVerbatim(t *testing.T) {
	v, err := DefaultRegistry().Apply(Map(kv("a", Int(1))), Chain{"json"})
	if err != nil {
		t.Fatal(err)
	}

	if !v.IsVerbatim() {
		t.Error("json output is not verbatim text")
	}
}
