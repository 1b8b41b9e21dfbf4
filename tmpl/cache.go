package tmpl

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/gsconf/lang"
)

// state is the cache entry of one template source.
type state struct {
	once  sync.Once
	nodes []Node
	keys  []string
	err   error
}

// hashOptions encodes the settings that affect building using gob and
// hashes them with xxh3.
func (e *Engine) hashOptions() uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(e.patternSrc)
	_ = enc.Encode(e.maxDepth)
	_ = enc.Encode(e.sepFunc)
	_ = enc.Encode(e.Blocks())

	return xxh3.Hash(buf.Bytes())
}

// cached returns the node tree of source, building it on first use.
func (e *Engine) cached(ctx context.Context, source string) ([]Node, []string, error) {
	sourceHash := xxh3.Hash([]byte(source))
	sourceKey := strconv.FormatUint(sourceHash^e.optsHash, 36)

	value, cacheHit := e.cache.LoadOrStore(sourceKey, new(state))

	entry, ok := value.(*state)
	if !ok {
		return nil, nil, ErrTemplateSyntax.
			With(slog.String("issue", "invalid cache entry type"))
	}

	e.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(e.optsHash, 16)),
		slog.Bool("cache_hit", cacheHit))

	entry.once.Do(func() {
		entry.nodes, entry.err = builder{e: e}.build(ctx, source)
		if entry.err != nil {
			entry.err = lang.WrapError(entry.err).
				With(slog.Int("source_length", len(source)))

			return
		}

		entry.keys = collectKeys(entry.nodes)
	})

	return entry.nodes, entry.keys, entry.err
}

// ClearCache drops every cached node tree.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Load reads a template from r and builds it. The template is named after
// r if r has a Name method, as *os.File does.
func (e *Engine) Load(ctx context.Context, r io.Reader) (*Template, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadTemplate.Wrap(err).
			With(slog.String("source", "reader"))
	}

	var name string
	if n, ok := r.(interface{ Name() string }); ok {
		name = n.Name()
	}

	e.logger.TraceContext(ctx, "read template",
		slog.String("template", name),
		slog.Int("source_bytes", len(data)))

	return e.Build(ctx, name, string(data))
}

// LoadFile builds the template at path. A relative path that does not exist
// is looked up in each search directory in turn.
func (e *Engine) LoadFile(ctx context.Context, path string) (*Template, error) {
	resolved, err := e.find(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, ErrReadTemplate.Wrap(err).With(slog.String("path", resolved))
	}
	defer f.Close()

	return e.Load(ctx, f)
}

func (e *Engine) find(path string) (string, error) {
	if isFile(path) || filepath.IsAbs(path) {
		return path, nil
	}

	dirs := e.searchPath
	if dirs == nil {
		dirs = SearchPath()
	}

	for _, dir := range dirs {
		if p := filepath.Join(dir, path); isFile(p) {
			return p, nil
		}
	}

	return "", ErrReadTemplate.Wrap(fs.ErrNotExist).With(
		slog.String("path", path),
		slog.Any("search_path", dirs))
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
