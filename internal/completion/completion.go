// Package completion determines whether all shard archives derived from a
// source parquet table have been written to the bucket.
package completion

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/hansmi/stack-mirror-tools/internal/client"
	"github.com/hansmi/stack-mirror-tools/internal/layout"
	"github.com/hansmi/stack-mirror-tools/internal/stats"
)

// ErrNamingConvention is returned when the first shard archive doesn't carry
// the expected total in its name.
var ErrNamingConvention = layout.ErrNamingConvention

type Lister interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]client.Object, error)
}

type Result struct {
	Table    string
	Prefix   string
	Found    int
	Expected int
	Complete bool
	Sizes    stats.SizeSummary
}

var _ slog.LogValuer = (*Result)(nil)

func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("table", r.Table),
		slog.String("prefix", r.Prefix),
		slog.Int("found", r.Found),
		slog.Int("expected", r.Expected),
		slog.Bool("complete", r.Complete),
		slog.Any("sizes", r.Sizes),
	)
}

type Checker struct {
	Lister       Lister
	Prefix       string
	JSONLSubpath string
	Suffix       string
}

// Check lists the shard archives of a table. Listing failures are returned as
// errors and never reported as an incomplete result.
func (c *Checker) Check(ctx context.Context, bucket, tablePath string) (_ Result, err error) {
	defer client.AnnotateError(&err, "table %q", tablePath)

	table, err := layout.ParseSourceTable(tablePath)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Table:  tablePath,
		Prefix: layout.OutputPrefix(c.Prefix, c.JSONLSubpath, table),
	}

	objects, err := c.Lister.ListObjects(ctx, bucket, result.Prefix)
	if err != nil {
		return Result{}, err
	}

	var archives []client.Object
	var sizes []int64

	for _, i := range objects {
		if strings.HasSuffix(i.Key, c.Suffix) {
			archives = append(archives, i)
			sizes = append(sizes, i.Size)
		}
	}

	result.Found = len(archives)
	result.Sizes = stats.Summarize(sizes)

	if len(archives) == 0 {
		return result, nil
	}

	// Listings are sorted by key.
	first := archives[0].Key

	result.Expected, err = layout.ParseShardTotal(first)
	if err != nil {
		return Result{}, fmt.Errorf("archive %q: %w", path.Base(first), err)
	}

	result.Complete = result.Found == result.Expected

	return result, nil
}

func (c *Checker) IsComplete(ctx context.Context, bucket, tablePath string) (bool, error) {
	result, err := c.Check(ctx, bucket, tablePath)
	if err != nil {
		return false, err
	}

	return result.Complete, nil
}
