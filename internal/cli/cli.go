// Package cli contains the setup shared by all command line programs.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/smithy-go/logging"
	"github.com/google/uuid"
	"github.com/hansmi/stack-mirror-tools/internal/buildinfo"
	"github.com/hansmi/stack-mirror-tools/internal/env"
)

type Logging struct {
	level slog.LevelVar
	debug bool
}

func (l *Logging) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&l.debug, "debug", env.MustGetBool("MIRROR_DEBUG", false),
		"Enable debug logging. Defaults to $MIRROR_DEBUG.")
}

// Setup installs a JSON logger writing to w as the default logger. Every
// record carries a random identifier of the current invocation.
func (l *Logging) Setup(w io.Writer) *slog.Logger {
	if l.debug {
		l.level.Set(slog.LevelDebug)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: &l.level,
	})

	logger := slog.New(handler).With(slog.String("run_id", uuid.NewString()))

	slog.SetDefault(logger)

	buildinfo.Log(logger, filepath.Base(os.Args[0]))

	return logger
}

// Usage returns a flag usage function printing the synopsis and description
// before the flag defaults.
func Usage(fs *flag.FlagSet, synopsis, description string) func() {
	return func() {
		w := fs.Output()

		fmt.Fprintf(w, "Usage: %s %s\n\n", os.Args[0], synopsis)
		fmt.Fprintln(w, description)
		fmt.Fprintln(w, "\nFlags:")
		fs.PrintDefaults()
	}
}

// LoadAWSConfig loads the shared AWS configuration with SDK logging routed to
// the logger at debug level.
func LoadAWSConfig(ctx context.Context, logger *slog.Logger) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx,
		config.WithLogger(logging.StandardLogger{
			Logger: slog.NewLogLogger(logger.Handler(), slog.LevelDebug),
		}),
		config.WithClientLogMode(
			aws.LogRetries|aws.LogDeprecatedUsage,
		),
	)
}
