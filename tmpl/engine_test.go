package tmpl

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/gsconf/lang"
)

func TestBuild_SyntaxErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		tag    string
		offset int
	}{
		{name: "unclosed if", source: "{% if a %}x", tag: "if", offset: 0},
		{name: "stray close", source: "x{% endif %}", tag: "endif", offset: 1},
		{name: "missing key", source: "{% if %}x{% endif %}", tag: "if", offset: 0},
		{name: "unclosed comment", source: "ab{% comment %}x", tag: "comment", offset: 2},
		{name: "stray endcomment", source: "{% endcomment %}", tag: "endcomment", offset: 0},
		{name: "misspelled block", source: "{% iff show %}secret{% endiff %}", tag: "iff", offset: 0},
		{name: "unknown tag with key", source: "x{% unless x %}", tag: "unless", offset: 1},
		{name: "unknown bare tag closed", source: "{% iff %}a{% endiff %}", tag: "iff", offset: 0},
		{
			name:   "interleaved kinds",
			source: "{% if a %}{% foreach b %}{% endif %}{% endforeach %}",
			tag:    "foreach",
			offset: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := mustEngine(t).Build(context.Background(), tt.name, tt.source)
			if !errors.Is(err, ErrTemplateSyntax) {
				t.Fatalf("Build() error = %v, want ErrTemplateSyntax", err)
			}

			var le *lang.Error
			if !errors.As(err, &le) {
				t.Fatalf("Build() error = %T, want *lang.Error", err)
			}

			attrs := map[string]string{}
			for _, a := range le.Attrs() {
				attrs[a.Key] = a.Value.String()
			}

			if attrs["tag"] != tt.tag {
				t.Errorf("tag = %q, want %q", attrs["tag"], tt.tag)
			}

			if want := strconv.Itoa(tt.offset); attrs["offset"] != want {
				t.Errorf("offset = %q, want %q", attrs["offset"], want)
			}
		})
	}
}

func TestBuild_Nodes(t *testing.T) {
	t.Parallel()

	tp, err := mustEngine(t).Build(context.Background(), "nodes",
		"a {% x!int %}{# c #}\n{% if y %}b{% endif %}")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []Node{
		Literal{Text: "a "},
		Placeholder{Key: "x", Chain: lang.Chain{"int"}, Offset: 2},
		Comment{Text: "{# c #}"},
		Control{
			Tag:    "if",
			Key:    "y",
			Body:   []Node{Literal{Text: "b"}},
			Offset: 21,
		},
	}

	if diff := cmp.Diff(want, tp.Nodes); diff != "" {
		t.Errorf("Nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_DepthExceeded(t *testing.T) {
	t.Parallel()

	e := mustEngine(t, WithMaxDepth(1))

	_, err := e.Build(context.Background(), "deep",
		"{% if a %}{% if b %}{% if c %}x{% endif %}{% endif %}{% endif %}")
	if !errors.Is(err, lang.ErrDepthExceeded) {
		t.Fatalf("Build() error = %v, want ErrDepthExceeded", err)
	}
}

func TestTemplate_Keys(t *testing.T) {
	t.Parallel()

	source := `{% name %} {% if show %}{% stats.health %}` +
		`{% foreach loot %}{% $item!get_0 %}{% cargo_$i %}{% endforeach %}` +
		`{% endif %}{% name %}`

	tp, err := mustEngine(t).Build(context.Background(), "keys", source)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []string{"name", "show", "stats.health", "loot"}
	if diff := cmp.Diff(want, tp.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Cache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := mustEngine(t)

	a, err := e.Build(ctx, "a", "x {% y %}")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	b, err := e.Build(ctx, "b", "x {% y %}")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if &a.Nodes[0] != &b.Nodes[0] {
		t.Error("templates with the same source do not share nodes")
	}

	if a.Name != "a" || b.Name != "b" {
		t.Errorf("names = %q, %q, want a, b", a.Name, b.Name)
	}

	e.ClearCache()

	c, err := e.Build(ctx, "c", "x {% y %}")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if &a.Nodes[0] == &c.Nodes[0] {
		t.Error("ClearCache() kept cached nodes")
	}

	if _, err := e.Build(ctx, "bad", "{% if a %}"); !errors.Is(err, ErrTemplateSyntax) {
		t.Fatalf("Build() error = %v, want ErrTemplateSyntax", err)
	}

	if _, err := e.Build(ctx, "bad", "{% if a %}"); !errors.Is(err, ErrTemplateSyntax) {
		t.Fatalf("cached Build() error = %v, want ErrTemplateSyntax", err)
	}
}

func TestEngine_RegisterBlock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	upper := BlockFunc(func(ctx context.Context, c *Call) (string, error) {
		out, err := c.Body(ctx, Var{Name: "who", Value: c.Value})
		if err != nil {
			return "", err
		}

		return strings.ToUpper(out), nil
	})

	e := mustEngine(t, WithStrip(true))

	if err := e.RegisterBlock("upper", upper); err != nil {
		t.Fatalf("RegisterBlock() error = %v", err)
	}

	double := lang.CommandFunc(func(v lang.Value, _ lang.Param) (lang.Value, error) {
		n, _ := v.AsInt()

		return lang.Int(2 * n), nil
	})

	if err := e.RegisterCommand("double", double); err != nil {
		t.Fatalf("RegisterCommand() error = %v", err)
	}

	got, err := e.Execute(ctx, "custom", `{% upper name %}hi {% $who %} {% hp!double %}{% endupper %}`,
		mustJSON(t, `{"name": "orc", "hp": 21}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if want := "HI ORC 42"; got != want {
		t.Errorf("Execute() = %q, want %q", got, want)
	}

	if err := e.RegisterBlock("late", upper); !errors.Is(err, ErrBlockFrozen) {
		t.Errorf("RegisterBlock() after render error = %v, want ErrBlockFrozen", err)
	}

	if err := e.RegisterCommand("late", double); !errors.Is(err, lang.ErrRegistryFrozen) {
		t.Errorf("RegisterCommand() after render error = %v, want ErrRegistryFrozen", err)
	}

	if want := []string{"for", "foreach", "if", "upper"}; !slices.Equal(e.Blocks(), want) {
		t.Errorf("Blocks() = %v, want %v", e.Blocks(), want)
	}
}

func TestEngine_BlockNames(t *testing.T) {
	t.Parallel()

	noop := BlockFunc(func(context.Context, *Call) (string, error) { return "", nil })

	for _, name := range []string{"", "comment", "endless", "two words", "9lives"} {
		if _, err := New(WithBlock(name, noop)); !errors.Is(err, ErrTemplateSyntax) {
			t.Errorf("New(WithBlock(%q)) error = %v, want ErrTemplateSyntax", name, err)
		}
	}

	if _, err := New(WithBlock("ok", nil)); !errors.Is(err, ErrTemplateSyntax) {
		t.Errorf("New(WithBlock(nil)) error = %v, want ErrTemplateSyntax", err)
	}
}

func TestEngine_Pattern(t *testing.T) {
	t.Parallel()

	e := mustEngine(t, WithPattern(`\$\{([a-z_.!0-9]+)\}`), WithStrip(true))

	got, err := e.Execute(context.Background(), "p", `hi ${name} ${drops!get_0}`,
		mustJSON(t, `{"name": "orc", "drops": ["bone"]}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if want := "hi orc bone"; got != want {
		t.Errorf("Execute() = %q, want %q", got, want)
	}

	for _, expr := range []string{`(`, `\{%\s*[a-z]+\s*%\}`, `\{(%)\s*([a-z]+)\s*%\}`} {
		if _, err := New(WithPattern(expr)); !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("New(WithPattern(%q)) error = %v, want ErrInvalidPattern", expr, err)
		}
	}
}

func TestEngine_LoadFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.tpl")

	if err := os.WriteFile(path, []byte(`{"hp": {% hp %}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	e := mustEngine(t, WithSearchPath(t.TempDir(), dir))

	tp, err := e.LoadFile(ctx, "unit.tpl")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if tp.Name != path {
		t.Errorf("Name = %q, want %q", tp.Name, path)
	}

	got, err := e.Render(ctx, tp, mustJSON(t, `{"hp": 7}`))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if want := `{"hp": 7}`; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	_, err = e.LoadFile(ctx, "missing.tpl")
	if !errors.Is(err, ErrReadTemplate) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadFile() error = %v, want ErrReadTemplate wrapping fs.ErrNotExist", err)
	}
}

func TestEngine_Load(t *testing.T) {
	t.Parallel()

	tp, err := mustEngine(t).Load(context.Background(), strings.NewReader("{% a %}"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff([]string{"a"}, tp.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	if tp.Source() != "{% a %}" {
		t.Errorf("Source() = %q", tp.Source())
	}
}

func TestSearchPath(t *testing.T) {
	env := t.TempDir()
	prefix := t.TempDir()

	t.Setenv(EnvTemplatePath, env)

	got := SearchPath(prefix)

	for _, want := range []string{prefix, env} {
		if !slices.Contains(got, want) {
			t.Errorf("SearchPath() = %v, missing %q", got, want)
		}
	}
}

func TestOutput_Text(t *testing.T) {
	t.Parallel()

	for _, o := range []Output{OutputText, OutputBlock, OutputJSON} {
		text, err := o.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}

		var got Output
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}

		if got != o {
			t.Errorf("UnmarshalText(%q) = %v, want %v", text, got, o)
		}
	}

	var o Output
	if err := o.UnmarshalText([]byte("xml")); !errors.Is(err, ErrInvalidOutput) {
		t.Errorf("UnmarshalText(xml) error = %v, want ErrInvalidOutput", err)
	}
}

func TestTrimTrailingComma(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"a,b,", "a,b"},
		{"a,b, \n", "a,b"},
		{"a,b,,", "a,b,"},
		{"a,b \n", "a,b \n"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TrimTrailingComma(tt.in); got != tt.want {
			t.Errorf("TrimTrailingComma(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
