package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/gsconf/log"
)

// Parse reads intermediate-format cells and prints the parsed value.
type Parse struct {
	Output output `embed:""`

	Source []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin." name:"source" optional:""`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	parser, err := newParser(ctx)
	if err != nil {
		return err
	}

	src, err := openSources(ctx, p.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	v, err := parser.ParseReader(ctx, src.Reader())
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "parsed source",
		slog.Any("source", p.Source),
		slog.String("kind", v.Kind().String()))

	return p.Output.write(outputFrom(ctx), v, parser.Grammar())
}
