package log_test

import (
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/gsconf/log"
)

func Example() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"))
	logger.Info("template rendered", slog.String("file", "items.json"))

	// Output:
	// level=INFO msg="template rendered" file=items.json
}

func Example_levels() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithLevel(log.LevelWarn))

	logger.Debug("hidden")
	logger.Warn("missing key", slog.String("key", "drops"))

	// Output:
	// level=WARN msg="missing key" key=drops
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithTimeLayout("none"),
		log.WithFormat(log.FormatJSON),
		log.WithLevel(log.LevelTrace))

	logger.Trace("parse complete", slog.Any("error", errors.New("none")))

	// Output:
	// {"level":"TRACE","msg":"parse complete","error":"none"}
}
