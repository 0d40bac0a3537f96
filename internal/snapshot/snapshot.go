// Package snapshot downloads a full copy of a hosted dataset repository.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hansmi/stack-mirror-tools/internal/retry"
)

type Request struct {
	Dataset   string
	Revision  string
	OutputDir string
	Workers   int
}

var _ slog.LogValuer = (*Request)(nil)

func (r Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dataset", r.Dataset),
		slog.String("revision", r.Revision),
		slog.String("output_dir", r.OutputDir),
		slog.Int("workers", r.Workers),
	)
}

// Downloader fetches a dataset snapshot into a directory. Implementations must
// be safe to call again after a partial download.
type Downloader interface {
	Download(context.Context, Request) error
}

type Options struct {
	Logger     *slog.Logger
	Downloader Downloader
	Policy     retry.Policy

	Dataset  string
	Revision string
	Workers  int

	// Directory receiving the snapshot.
	LocalDir string

	// Optional download directory. Files are symlinked into LocalDir after
	// a successful download.
	CacheDir string
}

type Fetcher struct {
	logger     *slog.Logger
	downloader Downloader
	policy     retry.Policy
	req        Request
	localDir   string
	cacheDir   string
}

func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.Dataset == "" {
		return nil, fmt.Errorf("%w: dataset is required", os.ErrInvalid)
	}

	if opts.LocalDir == "" {
		return nil, fmt.Errorf("%w: local directory is required", os.ErrInvalid)
	}

	req := Request{
		Dataset:   opts.Dataset,
		Revision:  opts.Revision,
		OutputDir: opts.LocalDir,
		Workers:   max(1, opts.Workers),
	}

	if opts.CacheDir != "" {
		req.OutputDir = opts.CacheDir
	}

	return &Fetcher{
		logger:     opts.Logger,
		downloader: opts.Downloader,
		policy:     opts.Policy,
		req:        req,
		localDir:   opts.LocalDir,
		cacheDir:   opts.CacheDir,
	}, nil
}

// Fetch downloads the snapshot, retrying failures according to the policy.
// Cancellation stops immediately and returns the context error.
func (f *Fetcher) Fetch(ctx context.Context) error {
	f.logger.InfoContext(ctx, "Fetching snapshot", slog.Any("request", f.req))

	if err := f.policy.Do(ctx, f.logger, "snapshot download", func(ctx context.Context) error {
		return f.downloader.Download(ctx, f.req)
	}); err != nil {
		return fmt.Errorf("dataset %q: %w", f.req.Dataset, err)
	}

	if f.cacheDir == "" {
		return nil
	}

	s, err := LinkTree(f.cacheDir, f.localDir)

	f.logger.InfoContext(ctx, "Linked snapshot files",
		slog.String("source", f.cacheDir),
		slog.String("destination", f.localDir),
		slog.Any("stats", s),
	)

	return err
}
