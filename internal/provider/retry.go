package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

const maxRetries = 3

// sleepFunc is the function used for retry backoff delays.
// It defaults to time.Sleep but can be overridden in tests.
var sleepFunc = time.Sleep

// withRetry runs fn up to maxRetries times with exponential backoff between
// attempts. Only transient faults are retried; context failures and
// non-retryable errors return immediately.
func withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if ctx.Err() != nil {
			return cancelErr(ctx)
		}
		err := fn()
		if err == nil {
			return nil
		}
		// A cancelled or expired context aborts the in-flight request and
		// surfaces inside fn's error. Translate it here so adapters never
		// report a caller abort as a provider fault.
		if ctx.Err() != nil {
			return cancelErr(ctx)
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second // 1s, 2s, 4s
			sleepFunc(backoff)
		}
	}
	if ctx.Err() != nil {
		return cancelErr(ctx)
	}
	return lastErr
}

// httpStatusError marks a response status as a provider fault so withRetry
// can tell transient codes from permanent ones.
type httpStatusError struct {
	status int
	url    string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", e.url, e.status)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *httpStatusError
	if errors.As(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "connection refused") || strings.Contains(s, "connection reset")
}
