package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gsconf/cli/cmd"
	"github.com/ardnew/gsconf/pkg"
)

// CLI is the top-level command-line interface for gsconf.
type CLI struct {
	Log     logConfig     `embed:"" group:"log"     prefix:"log-"`
	Grammar grammarConfig `embed:"" group:"grammar" prefix:"grammar-"`
	Pprof   pprofConfig   `embed:"" group:"pprof"   prefix:"pprof-"`

	Parse   cmd.Parse   `cmd:"" default:"withargs" help:"Parse intermediate-format cells"`
	Extract cmd.Extract `cmd:""                    help:"Extract a CSV page of cells"`
	Render  cmd.Render  `cmd:""                    help:"Render a template with data"`
	Keys    cmd.Keys    `cmd:""                    help:"List the data keys a template reads"`
	Init    cmd.Init    `cmd:""                    help:"Initialize configuration file"`
	Repl    cmd.Repl    `cmd:""                    help:"Parse cells interactively"`
}

// Run executes the gsconf CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier:   configFilePath,
		cmd.CacheIdentifier:    cacheDir(),
		cmd.TemplateIdentifier: templateDir(),
	}.
		CloneWith(cmd.Vars()).
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Grammar.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before kong parses so that messages emitted
	// while parsing honor them regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Grammar.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(cmd.ConfigIdentifier), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	opts, err := cli.Grammar.options()
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithParserOptions(ctx, opts...)

	// TimeLayout and Caller do not pass through a TextUnmarshaler, so the
	// logger is finalized after parsing.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
