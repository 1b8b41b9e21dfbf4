package cmd

import "github.com/ardnew/gsconf/lang"

// Predefined errors (sentinel values).
var (
	ErrReadSource     = lang.NewError("read source")
	ErrReadData       = lang.NewError("read data file")
	ErrMergeData      = lang.NewError("merge data files")
	ErrJSONMarshal    = lang.NewError("marshal JSON")
	ErrYAMLMarshal    = lang.NewError("marshal YAML")
	ErrWriteOutput    = lang.NewError("write output")
	ErrWriteConfig    = lang.NewError("write configuration file")
	ErrFileExists     = lang.NewError("file exists (use --force to overwrite)")
	ErrInvalidFormat  = lang.NewError("invalid output format")
	ErrInvalidCSV     = lang.NewError("invalid CSV page")
	ErrInvalidOptions = lang.NewError("invalid command options")
)
