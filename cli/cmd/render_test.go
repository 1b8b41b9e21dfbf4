package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardnew/gsconf/tmpl"
)

const itemTemplate = `{"name": {% name %}, "hp": {% stats.hp %}, "drops": {% drops %}}`

func TestRender_Run(t *testing.T) {
	dir := t.TempDir()

	tpl := writeFile(t, dir, "item.tmpl", itemTemplate)
	base := writeFile(t, dir, "base.json", `{"name": "Sword", "stats": {"hp": 10}, "drops": []}`)
	over := writeFile(t, dir, "over.yaml", "name: Axe\n")
	cell := writeFile(t, dir, "drops.txt", "drops = {wool, meat}")

	tests := []struct {
		name  string
		cmd   Render
		input string
		want  string
	}{
		{
			name: "single json file",
			cmd:  Render{Data: []string{base}, Template: tpl},
			want: `{"name": "Sword", "hp": 10, "drops": []}`,
		},
		{
			name: "merged in order",
			cmd:  Render{Data: []string{base, over, cell}, Template: tpl},
			want: `{"name": "Axe", "hp": 10, "drops": ["wool","meat"]}`,
		},
		{
			name: "strip",
			cmd:  Render{Data: []string{over}, Strip: true, Template: tpl},
			want: `{"name": Axe, "hp": , "drops": }`,
		},
		{
			name: "found in template directory",
			cmd: Render{
				templateFlags: templateFlags{TemplateDir: []string{dir}},
				Data:          []string{base},
				Template:      "item.tmpl",
			},
			want: `{"name": "Sword", "hp": 10, "drops": []}`,
		},
		{
			name:  "template from stdin",
			cmd:   Render{Data: []string{base}, Template: "-"},
			input: `{% stats.hp %}`,
			want:  `10`,
		},
		{
			name: "as json",
			cmd: Render{
				Output:   output{Format: "compact"},
				Data:     []string{base, cell},
				As:       "json",
				Template: tpl,
			},
			want: "{\n    \"name\": \"Sword\",\n    \"hp\": 10,\n    \"drops\": [\"wool\", \"meat\"]\n}\n",
		},
		{
			name:  "as block",
			cmd:   Render{Output: output{Format: "json"}, Data: []string{base}, As: "block", Template: "-"},
			input: `hp = {% stats.hp %}`,
			want:  "{\n  \"hp\": 10\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cmd.As == "" {
				tt.cmd.As = "text"
			}

			got, err := run(t, &tt.cmd, tt.input)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Run() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_CSVData(t *testing.T) {
	dir := t.TempDir()

	data := writeFile(t, dir, "item.csv", "name,#note,hp\nSword,ignored,10\n")

	got, err := run(t, &Render{Data: []string{data}, As: "text", Template: "-"}, `{% name %}:{% hp %}`)
	if err != nil {
		t.Fatal(err)
	}

	if want := `"Sword":10`; got != want {
		t.Errorf("Run() = %q, want %q", got, want)
	}
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()

	list := writeFile(t, dir, "list.json", `[1, 2]`)
	obj := writeFile(t, dir, "obj.json", `{"a": 1}`)
	bad := writeFile(t, dir, "bad.json", `{"a": }`)

	tests := []struct {
		name  string
		cmd   Render
		input string
		want  error
	}{
		{"merge non-mapping", Render{Data: []string{obj, list}, Template: "-"}, "x", ErrMergeData},
		{"bad data", Render{Data: []string{bad}, Template: "-"}, "x", ErrReadData},
		{"missing data file", Render{Data: []string{filepath.Join(dir, "nope.json")}, Template: "-"}, "x", ErrReadSource},
		{"strict missing key", Render{Data: []string{obj}, Strict: true, Template: "-"}, "{% b %}", tmpl.ErrMissingKey},
		{"missing template", Render{Template: "nope.tmpl"}, "", tmpl.ErrReadTemplate},
		{"unknown as", Render{As: "xml", Template: "-"}, "x", tmpl.ErrInvalidOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cmd.As == "" {
				tt.cmd.As = "text"
			}

			_, err := run(t, &tt.cmd, tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}
