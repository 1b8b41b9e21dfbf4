//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gsconf/log"
	"github.com/ardnew/gsconf/profile"
)

// pprofConfig selects a runtime profile written while the command runs.
type pprofConfig struct {
	Mode  string `default:""            enum:",${pprofModeEnum}" help:"Profile mode (${enum})." placeholder:"MODE" short:"p"`
	Dir   string `default:"${pprofDir}"                          help:"Profile output directory."                type:"path"`
	Quiet bool   `default:"true"                                 help:"Suppress profiler status messages."         negatable:""`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	var group kong.Group

	group.Key = "pprof"
	group.Title = "Profiling options"

	return group
}

// start returns the function that stops the profile. Without a mode
// nothing is profiled.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	attrs := []slog.Attr{slog.String("mode", f.Mode), slog.String("dir", f.Dir)}

	log.DebugContext(ctx, "profiling", attrs...)

	s := profile.New(
		profile.WithMode(f.Mode),
		profile.WithPath(f.Dir),
		profile.WithQuiet(f.Quiet),
	).Start()

	return func() {
		s.Stop()
		log.DebugContext(ctx, "profile written", attrs...)
	}
}
