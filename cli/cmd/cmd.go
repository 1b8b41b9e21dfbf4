package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gsconf/lang"
	"github.com/ardnew/gsconf/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	parserKey struct{}
	inputKey  struct{}
	outputKey struct{}
)

// WithParserOptions returns a new context.Context carrying the options every
// command passes to [lang.New].
func WithParserOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, parserKey{}, opts)
}

// newParser returns a parser configured from ctx. It logs through the
// default logger.
func newParser(ctx context.Context) (*lang.Parser, error) {
	opts, _ := ctx.Value(parserKey{}).([]lang.Option)

	return lang.New(append([]lang.Option{lang.WithLogger(log.Default())}, opts...)...)
}

// WithInput returns a new context.Context whose "-" source reads from r
// instead of os.Stdin.
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// WithOutput returns a new context.Context whose commands write their
// results to w instead of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// sources reads a list of input files in order, each at most once.
type sources struct {
	files []*os.File
	stdin io.Reader
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens the given paths for reading.
//
// Paths naming the same file are opened once. All occurrences of "-" are
// replaced with a single stdin reader placed last so it reads after all
// regular files. An empty list reads stdin.
func openSources(ctx context.Context, paths []string) (*sources, error) {
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}

	var (
		src  sources
		seen = make(map[fileKey]struct{})
	)

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, stdinOK := makeFileKey(stdinInfo)

	hasStdin := false

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		file, key, err := openUnique(path, seen)
		if err != nil {
			src.Close()

			return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
		}

		// Stdin named as a file, such as /dev/stdin.
		if stdinOK && key == stdinKey {
			hasStdin = true

			if file != nil {
				file.Close()
			}

			continue
		}

		if file != nil {
			src.files = append(src.files, file)
		}
	}

	if hasStdin {
		src.stdin = inputFrom(ctx)
	}

	log.TraceContext(ctx, "sources opened",
		slog.Int("files", len(src.files)),
		slog.Bool("stdin", hasStdin))

	return &src, nil
}

// openUnique opens the file at path unless a path seen before resolves to the
// same file, in which case it returns a nil file and no error.
func openUnique(path string, seen map[fileKey]struct{}) (*os.File, fileKey, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fileKey{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fileKey{}, err
	}

	if info.IsDir() {
		return nil, fileKey{}, errors.New("is a directory")
	}

	key, ok := makeFileKey(info)
	if ok {
		if _, exists := seen[key]; exists {
			return nil, key, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, key, err
	}

	return file, key, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// Reader returns a reader over all sources in order, stdin last.
func (s *sources) Reader() io.Reader {
	readers := make([]io.Reader, 0, len(s.files)+1)
	for _, f := range s.files {
		readers = append(readers, f)
	}

	if s.stdin != nil {
		readers = append(readers, s.stdin)
	}

	return io.MultiReader(readers...)
}

// Close closes every opened file.
func (s *sources) Close() error {
	var errs []error

	for _, f := range s.files {
		errs = append(errs, f.Close())
	}

	s.files = nil

	return errors.Join(errs...)
}

// readAll reads the concatenated contents of paths.
func readAll(ctx context.Context, paths []string) ([]byte, error) {
	src, err := openSources(ctx, paths)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src.Reader())
	if err != nil {
		return nil, ErrReadSource.Wrap(err)
	}

	return data, nil
}
