package catalog

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"
)

// Retry delays for exponential backoff between catalog attempts.
var retryDelays = []time.Duration{
	200 * time.Millisecond,
	500 * time.Millisecond,
	1 * time.Second,
}

const (
	// DefaultMaxAttempts is the default number of tries per category.
	DefaultMaxAttempts = 3

	// JitterFactor is the ±percentage of jitter applied to delays.
	JitterFactor = 0.2
)

// NextRetryDelay returns the backoff before retry number attempt
// (0-indexed), with ±20% jitter.
func NextRetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(retryDelays) {
		attempt = len(retryDelays) - 1
	}

	base := retryDelays[attempt]
	jitter := (rand.Float64()*2 - 1) * float64(base) * JitterFactor

	return time.Duration(float64(base) + jitter)
}

// IsRetryable reports whether a failed request may succeed on a retry.
// Transport failures, 429 and 5xx are retryable; other statuses and
// cancellation are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return true
}

// Retrying wraps a Catalog and retries transient failures.
type Retrying struct {
	next        Catalog
	maxAttempts int
	logger      *slog.Logger
	delay       func(attempt int) time.Duration
}

// NewRetrying creates a Retrying decorator. maxAttempts below 1 means
// DefaultMaxAttempts.
func NewRetrying(next Catalog, maxAttempts int, logger *slog.Logger) *Retrying {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{
		next:        next,
		maxAttempts: maxAttempts,
		logger:      logger,
		delay:       NextRetryDelay,
	}
}

// MealsByCategory implements Catalog.
func (r *Retrying) MealsByCategory(ctx context.Context, category string) ([]Meal, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			d := r.delay(attempt - 1)
			r.logger.Debug("retrying catalog request",
				slog.String("category", category),
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", d),
				slog.String("error", lastErr.Error()),
			)

			t := time.NewTimer(d)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}

		meals, err := r.next.MealsByCategory(ctx, category)
		if err == nil {
			return meals, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}
