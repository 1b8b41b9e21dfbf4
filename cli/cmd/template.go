package cmd

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gsconf/lang"
	"github.com/ardnew/gsconf/log"
	"github.com/ardnew/gsconf/tmpl"
)

// templateFlags locate and tokenize a template.
type templateFlags struct {
	TemplateDir []string `default:"${templates}" help:"Template directories searched before those in ${tmplPathEnv}." placeholder:"DIR" short:"t" type:"path"`
	Pattern     string   `help:"Placeholder expression with one capture group (default: ${tmplPattern})."`
}

// Vars returns the kong variables interpolated into command help.
func Vars() kong.Vars {
	return kong.Vars{
		"tmplPathEnv": tmpl.EnvTemplatePath,
		"tmplPattern": tmpl.DefaultPattern,
	}
}

// engine returns a template engine using parser for key commands.
func (f templateFlags) engine(parser *lang.Parser, opts ...tmpl.Option) (*tmpl.Engine, error) {
	base := []tmpl.Option{
		tmpl.WithParser(parser),
		tmpl.WithLogger(log.Default()),
		tmpl.WithSearchPath(tmpl.SearchPath(f.TemplateDir...)...),
	}

	if f.Pattern != "" {
		base = append(base, tmpl.WithPattern(f.Pattern))
	}

	return tmpl.New(append(base, opts...)...)
}

// load builds the named template file, or the template read from stdin when
// name is "-".
func (f templateFlags) load(ctx context.Context, e *tmpl.Engine, name string) (*tmpl.Template, error) {
	if name == stdinSource {
		return e.Load(ctx, inputFrom(ctx))
	}

	t, err := e.LoadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "loaded template",
		slog.String("template", t.Name),
		slog.Int("keys", len(t.Keys())))

	return t, nil
}
