package cli

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardnew/gsconf/pkg"
)

// Base names within the configuration directory.
const (
	baseConfig    = "config"
	baseTemplates = "templates"
)

var defaultDirMode os.FileMode = 0o700

// appName returns the directory name used under the user's config and cache
// roots. It is derived from the executable name so that renamed binaries keep
// separate state. Debugger builds (__debug_binNNN) map to [pkg.Name] and
// leading dots are dropped.
var appName = sync.OnceValue(func() string {
	return exeName(os.Args[0])
})

func exeName(arg0 string) string {
	path := arg0
	if exe, err := os.Executable(); err == nil {
		path = exe
	}

	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimLeft(name, ".")

	if strings.HasPrefix(name, "__debug_bin") || name == "" {
		return pkg.Name
	}

	return name
}

// userDir joins [appName] to the directory returned by root. When root
// fails it falls back to hidden in the home directory, then the working
// directory.
func userDir(root func() (string, error), hidden string) string {
	dir, err := root()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, appName())
}

var (
	configDir = sync.OnceValue(func() string {
		return userDir(os.UserConfigDir, ".config")
	})
	cacheDir = sync.OnceValue(func() string {
		return userDir(os.UserCacheDir, ".cache")
	})
)

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// templateDir is searched before the directories of the template path
// environment variable.
func templateDir() string { return configPath(baseTemplates) }

func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir(), templateDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
