package snapshot

import (
	"context"
	"log/slog"

	"github.com/bodaay/HuggingFaceModelDownloader/pkg/hfdownloader"
)

// HFDownloader fetches dataset repositories from the Hugging Face Hub. Files
// already present with the expected size or hash are skipped, making repeated
// calls resume where a previous one stopped.
type HFDownloader struct {
	Logger *slog.Logger

	// Access token for gated datasets.
	Token string

	// Parallel connections per file. Request.Workers limits the number of
	// files downloaded at the same time.
	Connections int
}

const defaultConnections = 8

var _ Downloader = (*HFDownloader)(nil)

func (d *HFDownloader) progress(ctx context.Context) hfdownloader.ProgressFunc {
	return func(e hfdownloader.ProgressEvent) {
		d.Logger.DebugContext(ctx, "Download progress",
			slog.Any("event", e.Event),
			slog.Any("path", e.Path),
			slog.Any("message", e.Message),
		)
	}
}

func (d *HFDownloader) Download(ctx context.Context, req Request) error {
	job := hfdownloader.Job{
		Repo:      req.Dataset,
		Revision:  req.Revision,
		IsDataset: true,
	}

	cfg := hfdownloader.Settings{
		OutputDir:          req.OutputDir,
		Concurrency:        defaultConnections,
		MaxActiveDownloads: req.Workers,
		Token:              d.Token,
	}

	if d.Connections > 0 {
		cfg.Concurrency = d.Connections
	}

	return hfdownloader.Download(ctx, job, cfg, d.progress(ctx))
}
