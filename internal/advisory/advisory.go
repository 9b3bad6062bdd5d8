// Package advisory implements the oracle-first, deterministic-fallback
// dispatch used by every external advisory call site: a bounded, validated
// consultation that degrades to a supplied deterministic strategy instead of
// propagating failure. It also exports the bounded retry used by provider
// clients.
package advisory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrUnavailable marks an advisor that could not produce a valid answer
// within its attempt budget.
var ErrUnavailable = errors.New("advisor unavailable")

// Source records which path produced a resolved value.
type Source string

const (
	SourceOracle   Source = "oracle"
	SourceFallback Source = "fallback"
)

// Options bound the retry policy.
type Options struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// BaseDelay is doubled after every failed attempt.
	BaseDelay time.Duration
	// Timeout caps each individual attempt.
	Timeout time.Duration
}

// DefaultOptions suits short-lived engine runs: three tries, sub-second
// initial backoff, and attempts that cannot hang past the request budget.
func DefaultOptions() Options {
	return Options{
		Attempts:  3,
		BaseDelay: 500 * time.Millisecond,
		Timeout:   15 * time.Second,
	}
}

// Result carries a resolved value and the path that produced it.
type Result[T any] struct {
	Value  T
	Source Source
	// Err is the consultation failure that forced the fallback, nil on the
	// oracle path.
	Err error
}

// Resolve consults an advisory oracle with bounded retries and validates its
// answer, degrading to the deterministic fallback on any failure. It never
// returns an error: a failed consultation is "unavailable", not broken.
//
// Validation failures are caller-visible defects in the response, so they
// skip the remaining attempts.
func Resolve[T any](
	ctx context.Context,
	logger *slog.Logger,
	opts Options,
	consult func(context.Context) (T, error),
	validate func(T) error,
	fallback func() T,
) Result[T] {
	var value T
	consultAndValidate := func(ctx context.Context) error {
		var consultErr error
		if value, consultErr = consult(ctx); consultErr != nil {
			return consultErr
		}
		if validateErr := validate(value); validateErr != nil {
			return permanent(validateErr)
		}
		return nil
	}

	if err := Do(ctx, logger, opts, "advisory consultation", consultAndValidate); err != nil {
		logger.LogAttrs(ctx, slog.LevelInfo, "advisor unavailable, using deterministic fallback",
			slog.String("error", err.Error()))
		return Result[T]{Value: fallback(), Source: SourceFallback, Err: err}
	}

	return Result[T]{Value: value, Source: SourceOracle, Err: nil}
}

// Do retries call with exponential backoff until it succeeds, the attempt
// budget runs out, or a non-retryable error surfaces.
func Do(
	ctx context.Context,
	logger *slog.Logger,
	opts Options,
	operation string,
	call func(context.Context) error,
) error {
	delay := opts.BaseDelay

	var err error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if opts.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		}
		err = call(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		if !Retryable(err) || attempt == opts.Attempts {
			break
		}

		logger.LogAttrs(ctx, slog.LevelDebug, "retrying after transient failure",
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return errors.Join(ErrUnavailable, context.Cause(ctx))
		case <-time.After(delay):
		}
		delay *= 2
	}

	return errors.Join(ErrUnavailable, err)
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// permanent wraps err so Retryable reports false regardless of its text.
func permanent(err error) error {
	return permanentError{err: err}
}

// Retryable classifies an error as transient. Network hiccups, rate limits,
// and server-side 5xx responses are worth another attempt; client defects
// and validation failures are not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var perm permanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// A per-attempt timeout, the next attempt gets a fresh deadline.
		return true
	}

	text := strings.ToLower(err.Error())

	// Network and connectivity issues.
	if strings.Contains(text, "timeout") ||
		strings.Contains(text, "connection") ||
		strings.Contains(text, "network") ||
		strings.Contains(text, "dns") {
		return true
	}

	// Rate limiting.
	if strings.Contains(text, "429") || strings.Contains(text, "rate limit") {
		return true
	}

	// Temporary server errors.
	if strings.Contains(text, "500") ||
		strings.Contains(text, "502") ||
		strings.Contains(text, "503") ||
		strings.Contains(text, "504") {
		return true
	}

	return false
}
