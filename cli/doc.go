// Package cli contains the command line interface for gsconf.
//
// # Usage
//
//	gsconf [flags] <command> [args]
//
// Parse is the default command, so cells can be piped straight in:
//
//	echo 'hp = 10, drops = {wool, meat}' | gsconf -f json
//
// The commands are:
//
//   - parse: parse intermediate-format cells from files or stdin
//   - extract: read a CSV page of cells, free-form or by key/data schema
//   - render: fill a template with values from JSON, YAML, CSV or cell files
//   - keys: list the data keys a template reads
//   - init: write the current global flags to the configuration file
//   - repl: parse cells interactively with command completion and history
//
// # Configuration
//
// Global flags may be set in the configuration file under the config key,
// written in the v2 grammar:
//
//	config = {log-level = debug, grammar-version = v2}
//
// The file lives in the user configuration directory, such as
// ~/.config/gsconf/config. A JSON file of the same name with a ".json"
// suffix is also read. Command-line flags override both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Grammar Options
//
//   - --grammar-version: Value shaping version (v1, v2)
//   - --[no-]grammar-to-num: Coerce numeric-looking leaves to numbers
//   - --grammar-raw: Return cells verbatim as text
//   - --grammar-sep: Replace the separators, such as ";:" for base and dict
//   - --grammar-max-depth: Maximum bracket nesting depth
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (see [profile.Modes])
//   - --pprof-dir: Set profile output directory (default: ~/.cache/gsconf/pprof)
package cli
