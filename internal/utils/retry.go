package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry runs fn with a short exponential backoff. Collaborator calls on
// the scan path go through this with a result-or-empty contract: the
// caller logs the final error and continues with zero results instead of
// propagating it.
func Retry(ctx context.Context, maxRetries uint64, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 15 * time.Second
	return backoff.Retry(fn, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx))
}

// Permanent marks an error as non-retryable for Retry
func Permanent(err error) error {
	return backoff.Permanent(err)
}
