// Package cmd implements the gsconf subcommands: parse, extract, render, keys,
// init and repl.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the intermediate-format configuration file. It is also the key of the
	// mapping that holds flag values within that file.
	ConfigIdentifier = "config"

	// TemplateIdentifier is the kong variable identifier containing the
	// default template directory.
	TemplateIdentifier = "templates"
)
