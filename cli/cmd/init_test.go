package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/gsconf/lang"
)

type initCLI struct {
	Name    string   `name:"name"`
	Count   int      `name:"count"`
	Tags    []string `name:"tags"`
	Empty   string   `name:"empty"`
	Secret  string   `hidden:""     name:"secret"`
	Verbose bool     `name:"verbose"`
}

// initContext parses args against initCLI with the config path set to path.
func initContext(t *testing.T, path string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: path})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), kctx)
}

// readConfig parses the configuration file at path and returns the mapping
// held under the config key.
func readConfig(t *testing.T, path string) lang.Value {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	p, err := lang.New(lang.WithGrammar(ConfigGrammar()))
	if err != nil {
		t.Fatal(err)
	}

	v, err := p.Parse(context.Background(), string(data))
	if err != nil {
		t.Fatalf("generated config does not parse: %v\n%s", err, data)
	}

	conf, ok := v.Get(ConfigIdentifier)
	if !ok {
		t.Fatalf("generated config has no %q key:\n%s", ConfigIdentifier, data)
	}

	return conf
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			err := (&Init{Force: tt.force}).Run(initContext(t, confPath, "--name=sword"))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			name, ok := readConfig(t, confPath).Get("name")
			if !ok || name.String() != "sword" {
				t.Errorf("name = %v, want sword", name)
			}
		})
	}
}

// TestInitFlags tests which flags are written and how their values convert.
func TestInitFlags(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "config")
	ctx := initContext(t, confPath,
		"--name=sword", "--count=5", "--tags=a,b", "--secret=x", "--verbose")

	if err := (&Init{}).Run(ctx); err != nil {
		t.Fatalf("Init.Run() error = %v", err)
	}

	conf := readConfig(t, confPath)

	m, ok := conf.AsMap()
	if !ok {
		t.Fatalf("config is %s, want mapping", conf.Kind())
	}

	want := []string{"name", "count", "tags", "verbose"}
	if diff := cmp.Diff(want, m.Keys()); diff != "" {
		t.Errorf("config keys mismatch (-want +got):\n%s", diff)
	}

	if count, _ := conf.Get("count"); count.String() != "5" {
		t.Errorf("count = %v, want 5", count)
	}

	if tags, _ := conf.Get("tags"); tags.Len() != 2 {
		t.Errorf("tags = %v, want two elements", tags)
	}
}

// TestInitWithInvalidPath tests init with an invalid file path.
func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	ctx := initContext(t, filepath.Join(t.TempDir(), "missing", "config"))

	if err := (&Init{}).Run(ctx); !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want ErrWriteConfig", err)
	}
}

// TestFlagValue tests the conversion of individual flag values.
func TestFlagValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  any
		want   lang.Value
		wantOK bool
	}{
		{"bool", true, lang.Bool(true), true},
		{"string", "test", lang.Str("test"), true},
		{"empty_string", "", lang.Value{}, false},
		{"int", 42, lang.Int(42), true},
		{"float", 3.5, lang.Float(3.5), true},
		{"string_slice", []string{"a", "b"}, lang.List(lang.Str("a"), lang.Str("b")), true},
		{"empty_slice", []string{}, lang.Value{}, false},
		{"nil", nil, lang.Value{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := flagValue(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("flagValue(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}

			if !ok {
				return
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("flagValue(%v) mismatch (-want +got):\n%s", tt.value, diff)
			}
		})
	}
}
