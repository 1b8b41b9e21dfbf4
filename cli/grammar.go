package cli

import (
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gsconf/lang"
)

// grammarConfig selects the intermediate-format grammar used by every
// command.
type grammarConfig struct {
	Version  string `default:"v1"                 enum:"v1,v2" help:"Value shaping version (${enum})."`
	ToNum    bool   `default:"true"                            help:"Coerce numeric-looking leaves to numbers." negatable:""`
	Raw      bool   `default:"false"                           help:"Return cells verbatim as text."`
	Sep      string `                                          help:"Replace the base, dict, block and command separators, in that order (default: ${grammarSep})." placeholder:"CHARS"`
	MaxDepth int    `default:"${grammarMaxDepth}"              help:"Maximum bracket nesting depth."`
}

func (grammarConfig) vars() kong.Vars {
	g := lang.DefaultGrammar()

	return kong.Vars{
		"grammarSep":      string([]rune{g.SepBase, g.SepDict, g.SepBlock, g.SepFunc}),
		"grammarMaxDepth": strconv.Itoa(lang.DefaultMaxDepth),
	}
}

func (grammarConfig) group() kong.Group {
	var group kong.Group

	group.Key = "grammar"
	group.Title = "Grammar options"

	return group
}

// options returns the parser options selected by the flags.
func (f grammarConfig) options() ([]lang.Option, error) {
	version, err := lang.ParseVersion(f.Version)
	if err != nil {
		return nil, err
	}

	gopts := []lang.GrammarOption{
		lang.WithGrammarVersion(version),
		lang.WithToNum(f.ToNum),
		lang.WithIsRaw(f.Raw),
	}

	if f.Sep != "" {
		if utf8.RuneCountInString(f.Sep) > 4 {
			return nil, lang.ErrInvalidGrammar.With(slog.String("sep", f.Sep))
		}

		var sep [4]rune

		copy(sep[:], []rune(f.Sep))

		gopts = append(gopts, lang.WithSeparators(sep[0], sep[1], sep[2], sep[3]))
	}

	opts := []lang.Option{lang.WithGrammarOptions(gopts...)}

	if f.MaxDepth > 0 {
		opts = append(opts, lang.WithMaxDepth(f.MaxDepth))
	}

	return opts, nil
}
