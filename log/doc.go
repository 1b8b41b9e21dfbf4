// Package log wraps [log/slog] with leveled methods that take typed
// attributes, a trace level below debug, and a colorized handler for
// terminals.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("template rendered", slog.String("file", name))
//
// The zero [Logger] discards everything, so packages can hold one in a
// struct field and log unconditionally.
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with further options; [Logger.With] and
// [Logger.WithGroup] derive one that adds attributes to every message.
//
// # Package Logger
//
// Package-level functions such as [Info] log through a default logger that
// writes text to standard error. [Config] reconfigures it.
//
// Context-unaware functions use [DefaultContextProvider], which returns
// [context.TODO] unless replaced.
package log
