package resourcegate

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	retryMaxAttempts = 3
	retryBaseDelay   = 1 * time.Second
	retryMultiplier  = 2.0
)

// RetryDB retries op up to retryMaxAttempts times with exponential backoff
// (base 1.0s, x2) when the error looks transient: lock, disk I/O, timeout, or
// busy (spec.md §4.7). Non-transient errors return immediately.
func RetryDB(ctx context.Context, op func() error) error {
	var lastErr error
	delay := retryBaseDelay
	for attempt := 1; attempt <= retryMaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) || attempt == retryMaxAttempts {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * retryMultiplier)
	}
	return lastErr
}

// transientMarkers are substrings commonly seen in modernc.org/sqlite and
// generic I/O errors that indicate a retry is worthwhile.
var transientMarkers = []string{
	"locked", "busy", "timeout", "timed out", "i/o error", "disk i/o",
	"database is locked", "resource temporarily unavailable",
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
