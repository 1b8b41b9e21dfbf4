package cmd

import (
	"context"

	"github.com/ardnew/gsconf/cli/cmd/repl"
	"github.com/ardnew/gsconf/log"
)

// Repl starts an interactive session that parses each line as a cell.
type Repl struct {
	Format string `default:"text" enum:"text,json,compact" help:"Initial result format (${enum})."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	parser, err := newParser(ctx)
	if err != nil {
		return err
	}

	return repl.Run(ctx, parser, cacheDir, r.Format, log.Default())
}
