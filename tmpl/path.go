package tmpl

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"
)

// EnvTemplatePath names the environment variable holding a PATH-like list of
// template directories.
const EnvTemplatePath = "GSCONF_TEMPLATE_PATH"

// SearchPath returns the template directories: prefix followed by the
// entries of [EnvTemplatePath], keeping only directories that exist.
func SearchPath(prefix ...string) []string {
	delim := string(os.PathListSeparator)

	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(EnvTemplatePath)),
		mung.WithDelim(delim),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(isDir),
	).String()

	return filepath.SplitList(list)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
