// Package copycmd generates command files for an external bulk-copy tool. Each
// parquet table yields one file listing a copy command per content
// identifier.
package copycmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hansmi/stack-mirror-tools/internal/client"
	"github.com/hansmi/stack-mirror-tools/internal/layout"
	"golang.org/x/sync/errgroup"
)

type Uploader interface {
	UploadFile(ctx context.Context, path, key string) error
}

type Options struct {
	Logger   *slog.Logger
	Stats    *Stats
	Template layout.CommandTemplate

	// Column holding the content identifiers.
	Column string

	Workers int

	// Command files are uploaded to "<Prefix>/<ParquetSubpath>/<label>/"
	// when an uploader is given.
	Uploader       Uploader
	Prefix         string
	ParquetSubpath string
}

type Generator struct {
	logger   *slog.Logger
	stats    *Stats
	tmpl     layout.CommandTemplate
	column   string
	workers  int
	uploader Uploader
	prefix   string
	subpath  string
}

func NewGenerator(opts Options) *Generator {
	if opts.Stats == nil {
		opts.Stats = NewStats()
	}

	return &Generator{
		logger:   opts.Logger,
		stats:    opts.Stats,
		tmpl:     opts.Template,
		column:   opts.Column,
		workers:  max(1, opts.Workers),
		uploader: opts.Uploader,
		prefix:   opts.Prefix,
		subpath:  opts.ParquetSubpath,
	}
}

// FileResult is the outcome of processing a single table.
type FileResult struct {
	Table       string
	CommandFile string
	Label       string
	Lines       int
	Bytes       int64
	UploadKey   string
	Err         error
}

var _ slog.LogValuer = (*FileResult)(nil)

func (r FileResult) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("table", r.Table),
		slog.String("command_file", r.CommandFile),
		slog.Int("lines", r.Lines),
	}

	if r.UploadKey != "" {
		attrs = append(attrs, slog.String("upload_key", r.UploadKey))
	}

	if r.Err != nil {
		attrs = append(attrs, slog.Any("error", r.Err))
	}

	return slog.GroupValue(attrs...)
}

func writeCommandFile(path string, lines func(w *bufio.Writer) (int, error)) (_ int, _ int64, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, 0, err
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	w := bufio.NewWriter(f)

	count, err := lines(w)
	if err != nil {
		return 0, 0, err
	}

	if err := w.Flush(); err != nil {
		return 0, 0, err
	}

	st, err := f.Stat()
	if err != nil {
		return 0, 0, err
	}

	return count, st.Size(), nil
}

// Generate writes the command file for one table, replacing any existing
// file.
func (g *Generator) Generate(ctx context.Context, table string) (result FileResult, err error) {
	result.Table = table

	defer client.AnnotateError(&err, "table %q", table)

	result.CommandFile, err = layout.CommandFilePath(table)
	if err != nil {
		return result, err
	}

	result.Label = filepath.Base(filepath.Dir(table))

	identifiers, err := ReadColumn(table, g.column)
	if err != nil {
		return result, err
	}

	result.Lines, result.Bytes, err = writeCommandFile(result.CommandFile, func(w *bufio.Writer) (int, error) {
		for _, id := range identifiers {
			if _, err := w.WriteString(g.tmpl.Line(result.Label, result.CommandFile, id)); err != nil {
				return 0, err
			}
		}

		return len(identifiers), nil
	})
	if err != nil {
		return result, fmt.Errorf("writing %q: %w", result.CommandFile, err)
	}

	if g.uploader != nil {
		key := layout.MirrorKey(g.prefix, g.subpath, result.Label, result.CommandFile)

		if err := g.uploader.UploadFile(ctx, result.CommandFile, key); err != nil {
			return result, err
		}

		result.UploadKey = key
	}

	return result, nil
}

// Run processes all tables with a bounded number of workers. A failing table
// does not stop the others; every table gets a result and the failures are
// also returned joined together. Tables not yet started when the context is
// canceled report the context error.
func (g *Generator) Run(ctx context.Context, tables []string) ([]FileResult, error) {
	results := make([]FileResult, len(tables))

	var eg errgroup.Group

	eg.SetLimit(g.workers)

	for idx, table := range tables {
		if err := ctx.Err(); err != nil {
			results[idx] = FileResult{Table: table, Err: err}
			continue
		}

		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[idx] = FileResult{Table: table, Err: err}
				return nil
			}

			result, err := g.Generate(ctx, table)
			result.Err = err

			g.stats.add(result)

			if err != nil {
				g.logger.ErrorContext(ctx, "Generating command file failed", slog.Any("result", result))
			} else {
				g.logger.DebugContext(ctx, "Command file written", slog.Any("result", result))
			}

			results[idx] = result

			return nil
		})
	}

	eg.Wait()

	var errs []error

	for _, i := range results {
		if i.Err != nil {
			errs = append(errs, i.Err)
		}
	}

	return results, errors.Join(errs...)
}
