package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hansmi/stack-mirror-tools/internal/cli"
	"github.com/hansmi/stack-mirror-tools/internal/client"
	"github.com/hansmi/stack-mirror-tools/internal/config"
	"github.com/hansmi/stack-mirror-tools/internal/copycmd"
	"github.com/hansmi/stack-mirror-tools/internal/layout"
	"github.com/pkg/profile"
)

type program struct {
	cfg     config.Config
	upload  bool
	profile string
}

func (p *program) registerFlags(fs *flag.FlagSet) {
	p.cfg.RegisterStorageFlags(fs)
	p.cfg.RegisterGeneratorFlags(fs)

	fs.BoolVar(&p.upload, "upload", false,
		"Upload command files to the parquet mirror location in the bucket.")
	fs.StringVar(&p.profile, "profile", "", `Profile type, one of "cpu", "mem", "block" or "trace".`)
}

func startProfiling(profileType string) (func(), error) {
	switch profileType {
	case "":
		return func() {}, nil
	case "cpu":
		return profile.Start(profile.CPUProfile).Stop, nil
	case "mem":
		return profile.Start(profile.MemProfile).Stop, nil
	case "block":
		return profile.Start(profile.BlockProfile).Stop, nil
	case "trace":
		return profile.Start(profile.TraceProfile).Stop, nil
	}

	return nil, fmt.Errorf("%w: unknown profile type %q", os.ErrInvalid, profileType)
}

// attachUploader uploads command files through the client, below the key
// prefix of a URL bucket name.
func (p *program) attachUploader(opts *copycmd.Options, c *client.Client) {
	opts.Uploader = c
	opts.Prefix = c.Key(p.cfg.Prefix)
}

func (p *program) run(ctx context.Context, logger *slog.Logger) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}

	stop, err := startProfiling(p.profile)
	if err != nil {
		return err
	}

	defer stop()

	opts := copycmd.Options{
		Logger: logger,
		Stats:  copycmd.NewStats(),
		Template: layout.CommandTemplate{
			SourceBucket:  p.cfg.SourceBucket,
			ContentPrefix: p.cfg.SourceContentPrefix,
			TargetDir:     p.cfg.TargetDir,
			DataSubpath:   p.cfg.DataSubpath,
			Mode:          p.cfg.Destination,
		},
		Column:         p.cfg.IdentifierColumn,
		Workers:        p.cfg.Workers,
		Prefix:         p.cfg.Prefix,
		ParquetSubpath: p.cfg.ParquetSubpath,
	}

	if p.upload {
		awsCfg, err := cli.LoadAWSConfig(ctx, logger)
		if err != nil {
			return err
		}

		c, err := client.New(awsCfg, p.cfg.Bucket)
		if err != nil {
			return err
		}

		p.attachUploader(&opts, c)
	}

	defer func() {
		logger.InfoContext(ctx, "Statistics", opts.Stats.Attrs()...)
	}()

	tables, err := copycmd.Discover(p.cfg.ParquetDir)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Discovered tables",
		slog.String("dir", p.cfg.ParquetDir),
		slog.Int("count", len(tables)),
		slog.Int("workers", p.cfg.Workers),
	)

	results, err := copycmd.NewGenerator(opts).Run(ctx, tables)

	failed := 0

	for _, i := range results {
		if i.Err != nil {
			failed++
		}
	}

	if err != nil {
		return fmt.Errorf("%d of %d tables failed: %w", failed, len(tables), err)
	}

	return nil
}

func main() {
	p := program{
		cfg: config.FromEnv(),
	}

	var logging cli.Logging

	flag.Usage = cli.Usage(flag.CommandLine, "[flags]", `
Generate one command file per parquet table found below the parquet directory.
Each line copies a content object referenced by the identifier column to a
local destination. Command files replace the ".parquet" extension with
".cmd.txt".`)

	logging.RegisterFlags(flag.CommandLine)
	p.registerFlags(flag.CommandLine)

	flag.Parse()

	logger := logging.Setup(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.run(ctx, logger); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
