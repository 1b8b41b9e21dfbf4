package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/ardnew/gsconf/lang"
)

// Keys lists the data keys a template reads, in order of first use.
type Keys struct {
	templateFlags `embed:""`

	Format string `default:"lines" enum:"lines,json,yaml" help:"Output format (${enum})." short:"f"`

	Template string `arg:"" help:"Template file, searched in the template directories, or '-' for stdin." name:"template"`
}

// Run executes the keys command.
func (k *Keys) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	parser, err := newParser(ctx)
	if err != nil {
		return err
	}

	e, err := k.engine(parser)
	if err != nil {
		return err
	}

	t, err := k.load(ctx, e, k.Template)
	if err != nil {
		return err
	}

	keys := t.Keys()
	w := outputFrom(ctx)

	if k.Format == "lines" {
		var sb strings.Builder
		for _, key := range keys {
			sb.WriteString(key)
			sb.WriteByte('\n')
		}

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	list := make([]lang.Value, len(keys))
	for i, key := range keys {
		list[i] = lang.Str(key)
	}

	return output{Format: k.Format}.write(w, lang.List(list...), parser.Grammar())
}
