package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how often and how fast a failing operation is repeated.
type Policy struct {
	// Maximum number of attempts including the first one. Zero means
	// unlimited.
	MaxAttempts int

	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     10,
		InitialInterval: 5 * time.Second,
		MaxInterval:     5 * time.Minute,
		Multiplier:      2,
	}
}

// Permanent wraps an error to stop retrying immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.MaxElapsedTime = 0

	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}

	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}

	if p.Multiplier >= 1 {
		eb.Multiplier = p.Multiplier
	}

	eb.Reset()

	var b backoff.BackOff = eb

	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}

	return backoff.WithContext(b, ctx)
}

// Do invokes op until it succeeds, returns a permanent error, the attempts are
// exhausted or the context is canceled. The last error is returned.
func (p Policy) Do(ctx context.Context, logger *slog.Logger, name string, op func(context.Context) error) error {
	attempt := 0

	operation := func() error {
		attempt++

		err := op(ctx)

		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, next time.Duration) {
		logger.WarnContext(ctx, "Attempt failed",
			slog.String("operation", name),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.MaxAttempts),
			slog.Duration("next_delay", next),
			slog.Any("error", err),
		)
	}

	err := backoff.RetryNotify(operation, p.backOff(ctx), notify)
	if err != nil {
		logger.ErrorContext(ctx, "Giving up",
			slog.String("operation", name),
			slog.Int("attempts", attempt),
			slog.Any("error", err),
		)
	}

	return err
}
