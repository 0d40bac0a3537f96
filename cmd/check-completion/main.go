package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/hansmi/stack-mirror-tools/internal/cli"
	"github.com/hansmi/stack-mirror-tools/internal/client"
	"github.com/hansmi/stack-mirror-tools/internal/completion"
	"github.com/hansmi/stack-mirror-tools/internal/config"
)

type program struct {
	cfg     config.Config
	parquet string
	json    bool

	// Set by connect unless provided.
	lister completion.Lister
	bucket string
	prefix string
}

func (p *program) registerFlags(fs *flag.FlagSet) {
	p.cfg.RegisterStorageFlags(fs)

	fs.StringVar(&p.parquet, "parquet", "",
		`Source table, e.g. "AGS_Script/train-00000-of-00001.parquet". Required.`)
	fs.BoolVar(&p.json, "json", false, "Print a JSON object per table instead of a boolean.")
}

type jsonResult struct {
	Table    string `json:"table"`
	Prefix   string `json:"prefix"`
	Found    int    `json:"found"`
	Expected int    `json:"expected"`
	Complete bool   `json:"complete"`
	Bytes    int64  `json:"bytes"`
}

func (p *program) print(w io.Writer, multiple bool, r completion.Result) error {
	if p.json {
		return json.NewEncoder(w).Encode(jsonResult{
			Table:    r.Table,
			Prefix:   r.Prefix,
			Found:    r.Found,
			Expected: r.Expected,
			Complete: r.Complete,
			Bytes:    int64(r.Sizes.Total),
		})
	}

	if multiple {
		_, err := fmt.Fprintf(w, "%s\t%t\n", r.Table, r.Complete)
		return err
	}

	_, err := fmt.Fprintln(w, r.Complete)

	return err
}

// connect creates the bucket client. The dataset prefix is placed below the
// key prefix of a URL bucket name.
func (p *program) connect(ctx context.Context, logger *slog.Logger) error {
	awsCfg, err := cli.LoadAWSConfig(ctx, logger)
	if err != nil {
		return err
	}

	c, err := client.New(awsCfg, p.cfg.Bucket)
	if err != nil {
		return err
	}

	p.lister = c
	p.bucket = c.Name()
	p.prefix = c.Key(p.cfg.Prefix)

	return nil
}

func (p *program) run(ctx context.Context, logger *slog.Logger, w io.Writer, tables []string) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}

	if p.lister == nil {
		if err := p.connect(ctx, logger); err != nil {
			return err
		}
	}

	checker := &completion.Checker{
		Lister:       p.lister,
		Prefix:       p.prefix,
		JSONLSubpath: p.cfg.JSONLSubpath,
		Suffix:       p.cfg.ArchiveSuffix,
	}

	var errs []error

	for _, table := range tables {
		result, err := checker.Check(ctx, p.bucket, table)
		if err != nil {
			logger.ErrorContext(ctx, "Completion check failed",
				slog.String("table", table),
				slog.Any("error", err),
			)
			errs = append(errs, err)
			continue
		}

		logger.InfoContext(ctx, "Completion check", slog.Any("result", result))

		if err := p.print(w, len(tables) > 1, result); err != nil {
			return err
		}
	}

	return errors.Join(errs...)
}

func main() {
	p := program{
		cfg: config.FromEnv(),
	}

	var logging cli.Logging

	flag.Usage = cli.Usage(flag.CommandLine, "-parquet <label>/<table>.parquet [table...]", `
Check whether all compressed JSONL shard archives derived from a source parquet
table exist in the bucket. Prints "true" or "false" for each table. Listing
failures and unexpected archive names are reported as errors.`)

	logging.RegisterFlags(flag.CommandLine)
	p.registerFlags(flag.CommandLine)

	flag.Parse()

	logger := logging.Setup(os.Stderr)

	var tables []string

	if p.parquet != "" {
		tables = append(tables, p.parquet)
	}

	tables = append(tables, flag.Args()...)

	if len(tables) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := p.run(context.Background(), logger, os.Stdout, tables); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
