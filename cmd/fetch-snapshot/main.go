package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hansmi/stack-mirror-tools/internal/cli"
	"github.com/hansmi/stack-mirror-tools/internal/config"
	"github.com/hansmi/stack-mirror-tools/internal/snapshot"
)

type program struct {
	cfg config.Config
}

func (p *program) run(ctx context.Context, logger *slog.Logger) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}

	f, err := snapshot.NewFetcher(snapshot.Options{
		Logger: logger,
		Downloader: &snapshot.HFDownloader{
			Logger: logger,
			Token:  os.Getenv("HF_TOKEN"),
		},
		Policy:   p.cfg.Retry,
		Dataset:  p.cfg.Dataset,
		Revision: p.cfg.Revision,
		Workers:  p.cfg.Workers,
		LocalDir: p.cfg.LocalDir,
		CacheDir: p.cfg.CacheDir,
	})
	if err != nil {
		return err
	}

	return f.Fetch(ctx)
}

func main() {
	p := program{
		cfg: config.FromEnv(),
	}

	var logging cli.Logging

	flag.Usage = cli.Usage(flag.CommandLine, "[flags]", `
Download a dataset snapshot from the Hugging Face Hub, retrying failed attempts
with exponential backoff. Interrupting stops without retrying. Gated datasets
require an access token in $HF_TOKEN.`)

	logging.RegisterFlags(flag.CommandLine)
	p.cfg.RegisterSnapshotFlags(flag.CommandLine)

	flag.Parse()

	logger := logging.Setup(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.run(ctx, logger); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			logger.Info("Interrupted")
			return
		}

		log.Fatalf("Error: %v", err)
	}
}
