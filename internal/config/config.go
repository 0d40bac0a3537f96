// Package config holds the settings shared by the mirror tools. Defaults match
// the production setup on a single large instance with a RAID0 scratch volume.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hansmi/stack-mirror-tools/internal/env"
	"github.com/hansmi/stack-mirror-tools/internal/layout"
	"github.com/hansmi/stack-mirror-tools/internal/retry"
)

const (
	DefaultBucket              = "ai2-llm"
	DefaultPrefix              = "pretraining-data/sources/the-stack-v2"
	DefaultJSONLSubpath        = "jsonl_data"
	DefaultParquetSubpath      = "raw-hf-parquets"
	DefaultArchiveSuffix       = ".jsonl.zstd"
	DefaultSourceBucket        = "softwareheritage"
	DefaultSourceContentPrefix = "content"
	DefaultStorageDir          = "/mnt/raid0"
	DefaultDataSubpath         = "the-stack-v2/data"
	DefaultIdentifierColumn    = "blob_id"
	DefaultWorkers             = 120
	DefaultDataset             = "bigcode/the-stack-v2"
	DefaultRevision            = "main"
)

type Config struct {
	// Bucket receiving the derived output.
	Bucket string

	// Key prefix of the dataset within the bucket.
	Prefix string

	JSONLSubpath   string
	ParquetSubpath string

	// Shard archives are recognized by this key suffix.
	ArchiveSuffix string

	// Bucket and key prefix holding the content objects referenced by the
	// identifier column.
	SourceBucket        string
	SourceContentPrefix string

	// Local directory containing the downloaded parquet tables.
	ParquetDir string

	TargetDir        string
	DataSubpath      string
	IdentifierColumn string
	Destination      layout.DestinationMode

	Workers int

	Dataset  string
	Revision string
	LocalDir string
	CacheDir string

	Retry retry.Policy
}

// Default returns the configuration with all fields set to their documented
// defaults.
func Default() Config {
	return Config{
		Bucket:              DefaultBucket,
		Prefix:              DefaultPrefix,
		JSONLSubpath:        DefaultJSONLSubpath,
		ParquetSubpath:      DefaultParquetSubpath,
		ArchiveSuffix:       DefaultArchiveSuffix,
		SourceBucket:        DefaultSourceBucket,
		SourceContentPrefix: DefaultSourceContentPrefix,
		ParquetDir:          filepath.Join(DefaultStorageDir, "the-stack-v2", DefaultParquetSubpath),
		TargetDir:           DefaultStorageDir,
		DataSubpath:         DefaultDataSubpath,
		IdentifierColumn:    DefaultIdentifierColumn,
		Destination:         layout.DestinationBlob,
		Workers:             DefaultWorkers,
		Dataset:             DefaultDataset,
		Revision:            DefaultRevision,
		LocalDir:            filepath.Join(DefaultStorageDir, "the-stack-v2", DefaultParquetSubpath),
		CacheDir:            filepath.Join(DefaultStorageDir, "cache"),
		Retry:               retry.DefaultPolicy(),
	}
}

// FromEnv returns the defaults overridden by environment variables. Malformed
// values are fatal.
func FromEnv() Config {
	cfg := Default()

	cfg.Bucket = env.GetWithFallback("MIRROR_BUCKET", cfg.Bucket)
	cfg.Prefix = env.GetWithFallback("MIRROR_PREFIX", cfg.Prefix)
	cfg.ParquetDir = env.GetWithFallback("MIRROR_PARQUET_DIR", cfg.ParquetDir)
	cfg.TargetDir = env.GetWithFallback("MIRROR_TARGET_DIR", cfg.TargetDir)
	cfg.Workers = env.MustGetInt("MIRROR_WORKERS", cfg.Workers)
	cfg.Retry.MaxAttempts = env.MustGetInt("MIRROR_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.Retry.InitialInterval = env.MustGetDuration("MIRROR_BACKOFF_INITIAL", cfg.Retry.InitialInterval)
	cfg.Retry.MaxInterval = env.MustGetDuration("MIRROR_BACKOFF_MAX", cfg.Retry.MaxInterval)

	return cfg
}

// RegisterStorageFlags registers the flags describing the bucket layout.
func (c *Config) RegisterStorageFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Bucket, "bucket", c.Bucket,
		"Bucket name or URL of an S3-compatible endpoint. Defaults to $MIRROR_BUCKET.")
	fs.StringVar(&c.Prefix, "prefix", c.Prefix,
		"Key prefix of the dataset. Defaults to $MIRROR_PREFIX.")
	fs.StringVar(&c.JSONLSubpath, "jsonl_subpath", c.JSONLSubpath,
		"Subpath below the prefix holding shard archives.")
	fs.StringVar(&c.ParquetSubpath, "parquet_subpath", c.ParquetSubpath,
		"Subpath below the prefix holding mirrored parquet tables and command files.")
	fs.StringVar(&c.ArchiveSuffix, "archive_suffix", c.ArchiveSuffix,
		"Key suffix of shard archives.")
}

// RegisterGeneratorFlags registers the flags of the copy command generator.
func (c *Config) RegisterGeneratorFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ParquetDir, "parquet_dir", c.ParquetDir,
		"Directory searched recursively for parquet tables. Defaults to $MIRROR_PARQUET_DIR.")
	fs.StringVar(&c.TargetDir, "target_dir", c.TargetDir,
		"Root of the local copy destinations. Defaults to $MIRROR_TARGET_DIR.")
	fs.StringVar(&c.SourceBucket, "source_bucket", c.SourceBucket,
		"Bucket holding the content objects.")
	fs.StringVar(&c.IdentifierColumn, "column", c.IdentifierColumn,
		"Parquet column with content identifiers.")
	fs.Var(&c.Destination, "destination",
		`Destination path shape, "blob" (one file per identifier) or "legacy".`)
	fs.IntVar(&c.Workers, "workers", c.Workers,
		"Number of tables processed concurrently. Defaults to $MIRROR_WORKERS.")
}

// RegisterSnapshotFlags registers the flags of the snapshot fetcher.
func (c *Config) RegisterSnapshotFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Dataset, "dataset", c.Dataset, "Dataset repository to download.")
	fs.StringVar(&c.Revision, "revision", c.Revision, "Dataset revision.")
	fs.StringVar(&c.LocalDir, "local_dir", c.LocalDir, "Directory receiving the snapshot.")
	fs.StringVar(&c.CacheDir, "cache_dir", c.CacheDir,
		"Download directory; files are symlinked into the local directory. Empty to download directly.")
	fs.IntVar(&c.Workers, "workers", c.Workers,
		"Number of concurrent downloads. Defaults to $MIRROR_WORKERS.")
	fs.IntVar(&c.Retry.MaxAttempts, "max_attempts", c.Retry.MaxAttempts,
		"Maximum number of download attempts, 0 for unlimited. Defaults to $MIRROR_MAX_ATTEMPTS.")
	fs.DurationVar(&c.Retry.InitialInterval, "backoff_initial", c.Retry.InitialInterval,
		"Delay before the first retry. Defaults to $MIRROR_BACKOFF_INITIAL.")
	fs.DurationVar(&c.Retry.MaxInterval, "backoff_max", c.Retry.MaxInterval,
		"Upper bound for the delay between retries. Defaults to $MIRROR_BACKOFF_MAX.")
}

func (c Config) Validate() error {
	var errs []error

	if c.Bucket == "" {
		errs = append(errs, fmt.Errorf("%w: bucket name is required", os.ErrInvalid))
	}

	if c.ArchiveSuffix == "" {
		errs = append(errs, fmt.Errorf("%w: archive suffix is required", os.ErrInvalid))
	}

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: worker count must be positive, got %d", os.ErrInvalid, c.Workers))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("%w: negative attempt count %d", os.ErrInvalid, c.Retry.MaxAttempts))
	}

	if c.Retry.InitialInterval < 0 || c.Retry.MaxInterval < 0 {
		errs = append(errs, fmt.Errorf("%w: negative backoff interval", os.ErrInvalid))
	}

	if c.Retry.MaxInterval > 0 && c.Retry.MaxInterval < c.Retry.InitialInterval {
		errs = append(errs, fmt.Errorf("%w: maximum backoff %v below initial %v",
			os.ErrInvalid, c.Retry.MaxInterval, c.Retry.InitialInterval))
	}

	return errors.Join(errs...)
}
