// Package shared provides common utilities used across the codebase.
package shared

import (
	"context"
	"strings"
	"time"
)

// IsSQLiteBusy reports a SQLITE_BUSY or "database is locked" error. Both are
// transient concurrency failures that warrant a retry.
func IsSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// WithRetry runs fn up to attempts times, sleeping with exponential backoff
// between tries, but only while retryable classifies the failure as
// transient. The last error is returned when all attempts fail.
func WithRetry(ctx context.Context, attempts int, baseDelay time.Duration, retryable func(error) bool, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !retryable(err) || i == attempts-1 {
			return err
		}
		delay := baseDelay * time.Duration(1<<i)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
