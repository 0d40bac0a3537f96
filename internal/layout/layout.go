// Package layout implements the naming conventions shared by the mirror
// tools: source parquet tables on disk, command files next to them and
// compressed JSONL shard archives in the bucket.
package layout

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	TableExt   = ".parquet"
	CommandExt = ".cmd.txt"
)

var (
	// ErrInvalidName is returned for source table paths not following the
	// "<label>/<split>-<shard>-of-<total>.parquet" shape.
	ErrInvalidName = errors.New("invalid source table name")

	// ErrNamingConvention is returned when a shard archive name doesn't end
	// in "-of-<total>.<ext>".
	ErrNamingConvention = errors.New("shard archive naming convention violated")
)

// SourceTable identifies one parquet shard of a partition.
type SourceTable struct {
	Path string

	// Base name of the parent directory, e.g. a programming language.
	Label string

	// Second hyphen-delimited token of the file name, e.g. "00000" in
	// "train-00000-of-00001.parquet".
	Shard string
}

func ParseSourceTable(p string) (SourceTable, error) {
	p = filepath.ToSlash(p)

	dir, base := path.Split(p)
	label := path.Base(dir)

	if dir == "" || label == "/" || label == "." {
		return SourceTable{}, fmt.Errorf("%w: %q: missing partition directory", ErrInvalidName, p)
	}

	tokens := strings.Split(base, "-")
	if len(tokens) < 2 || tokens[1] == "" {
		return SourceTable{}, fmt.Errorf("%w: %q: missing shard index", ErrInvalidName, p)
	}

	return SourceTable{
		Path:  p,
		Label: label,
		Shard: tokens[1],
	}, nil
}

// OutputPrefix returns the key prefix below which the shard archives for the
// table are written.
func OutputPrefix(prefix, jsonlSubpath string, t SourceTable) string {
	return path.Join(prefix, jsonlSubpath, t.Label, t.Label+"-"+t.Shard)
}

// MirrorKey returns the key under which a file belonging to a partition is
// mirrored into the bucket.
func MirrorKey(prefix, parquetSubpath, label, name string) string {
	return path.Join(prefix, parquetSubpath, label, path.Base(filepath.ToSlash(name)))
}

// CommandFilePath returns the path of the command file generated for a
// table.
func CommandFilePath(tablePath string) (string, error) {
	if !strings.HasSuffix(tablePath, TableExt) {
		return "", fmt.Errorf("%w: %q: expected %s extension", ErrInvalidName, tablePath, TableExt)
	}

	return strings.TrimSuffix(tablePath, TableExt) + CommandExt, nil
}

// ParseShardTotal extracts the expected number of shards from an archive key
// such as "a/b/AGS_Script-00000-of-3.jsonl.zstd".
func ParseShardTotal(key string) (int, error) {
	parts := strings.Split(path.Base(key), "-")

	if len(parts) < 2 || parts[len(parts)-2] != "of" {
		return 0, fmt.Errorf("%w: %q", ErrNamingConvention, key)
	}

	raw, _, _ := strings.Cut(parts[len(parts)-1], ".")

	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: shard total: %w", ErrNamingConvention, key, err)
	}

	return total, nil
}
