package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/ardnew/gsconf/lang"
	"github.com/ardnew/gsconf/log"
	"github.com/ardnew/gsconf/profile"
)

// ConfigGrammar returns the grammar of the configuration file.
func ConfigGrammar() lang.Grammar {
	return lang.DefaultGrammar(lang.WithGrammarVersion(lang.V2))
}

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	conf := lang.Map(lang.Entry{Key: ConfigIdentifier, Value: i.flags(ctx)})
	text := lang.Format(conf, ConfigGrammar()) + "\n"

	if err := os.WriteFile(confPath, []byte(text), 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// flags collects the current values of the global flags.
func (i *Init) flags(ctx context.Context) lang.Value {
	ktx := kongContextFrom(ctx)

	prefixIgnore := []string{"help", "version", profile.Tag}

	m := lang.NewMapping(len(ktx.Model.Flags))

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := flagValue(ktx.FlagValue(flag)); ok {
			m.Set(flag.Name, v)
		}
	}

	return lang.MapOf(m)
}

// flagValue converts a flag value, skipping unset strings and lists.
func flagValue(x any) (lang.Value, bool) {
	if x == nil {
		return lang.Value{}, false
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.String, reflect.Slice:
		if rv.Len() == 0 {
			return lang.Value{}, false
		}
	}

	v, err := lang.FromNative(x)
	if err != nil {
		return lang.Str(fmt.Sprint(x)), true
	}

	return v, true
}
