package services

import (
	"context"
	"time"
)

// RetryOptions tunes Retry. Zero values fall back to the defaults.
type RetryOptions struct {
	MaxRetries   int           // attempts beyond the first
	InitialDelay time.Duration // delay before the first retry
	MaxDelay     time.Duration // cap for the doubling delay
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	return o
}

// Retry runs fn until it succeeds or the attempts are used up, doubling the
// delay between attempts up to MaxDelay. The last error is returned.
func Retry(ctx context.Context, fn func(ctx context.Context) error, opts RetryOptions) error {
	opts = opts.withDefaults()
	delay := opts.InitialDelay

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
