package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gsconf/cli/cmd"
	"github.com/ardnew/gsconf/lang"
	"github.com/ardnew/gsconf/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from
// the mapping held under key in an intermediate-format configuration file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve("config"), "/path/to/config")
//
// The file is parsed with [cmd.ConfigGrammar], so keyed values are bare:
//
//	config = {log-level = debug, log-format = json, log-pretty = true}
//
// This configuration will be applied to kong flags:
//
//	--log-level=debug
//	--log-format=json
//	--log-pretty=true
//
// Flag names may also be written with underscores. Numbers are handed to kong
// as text and sequences as comma-separated lists. A file that does not parse
// or lacks the key yields no values. Command-line flags override config file
// values.
func resolve(key string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		ctx := context.Background()

		p, err := lang.New(lang.WithGrammar(cmd.ConfigGrammar()))
		if err != nil {
			return nil, err
		}

		v, err := p.ParseReader(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		conf, ok := v.Get(key)
		if !ok {
			return config{}, nil
		}

		m, ok := conf.AsMap()
		if !ok {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.String("key", key),
				slog.String("kind", conf.Kind().String()))

			return config{}, nil
		}

		return mappingToConfig(m), nil
	}
}

// config implements [kong.Resolver] for intermediate-format configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// mappingToConfig converts a mapping into values kong can decode.
func mappingToConfig(m *lang.Mapping) config {
	result := make(config, m.Len())

	for k, v := range m.All() {
		result[k] = flagText(v)
	}

	return result
}

func flagText(v lang.Value) any {
	switch v.Kind() {
	case lang.KindBool:
		b, _ := v.AsBool()

		return b

	case lang.KindNull:
		return nil

	case lang.KindSequence:
		seq, _ := v.AsList()

		items := make([]string, len(seq))
		for i, e := range seq {
			items[i] = e.String()
		}

		return strings.Join(items, ",")

	default:
		return v.String()
	}
}
