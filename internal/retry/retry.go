// Package retry provides shared retry utilities for the LLM, embedding, and
// parsing clients.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Default retry and timeout constants shared across clients.
const (
	// MaxAttempts is the default number of retry attempts.
	MaxAttempts = 3

	// RequestTimeout is the default request timeout.
	RequestTimeout = 2 * time.Minute

	// BackoffBase is the base duration for exponential backoff.
	BackoffBase = 250 * time.Millisecond
)

// SleepWithBackoff sleeps with exponential backoff.
// The delay is calculated as BackoffBase * 2^(attempt-1).
func SleepWithBackoff(ctx context.Context, attempt int) {
	delay := BackoffBase * time.Duration(1<<uint(attempt-1))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// EnsureTimeout returns a context with the given timeout if none exists.
// If the context already has a deadline, it returns the original context
// unchanged. The returned cancel function should always be called.
func EnsureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Do runs fn up to attempts times, backing off between retryable failures.
// It returns nil on the first success, the last error otherwise.
func Do(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == attempts {
			return lastErr
		}
		SleepWithBackoff(ctx, attempt)
	}
	return lastErr
}

// IsRetryable checks if an error should trigger a retry attempt.
// Authentication failures and invalid requests are permanent; rate limits,
// server errors, and network issues are worth another try.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Authentication/authorization errors - not retryable
	authPatterns := []string{
		"401", "403",
		"invalid_api_key", "authentication", "permission",
		"unauthorized", "unauthenticated", "permission_denied",
	}
	for _, p := range authPatterns {
		if strings.Contains(errStr, p) {
			return false
		}
	}

	// Invalid request errors - not retryable
	invalidPatterns := []string{
		"400", "422",
		"invalid_request", "invalid_argument", "malformed", "validation",
	}
	for _, p := range invalidPatterns {
		if strings.Contains(errStr, p) {
			return false
		}
	}

	// Retryable errors: rate limits, server errors, network issues
	retryablePatterns := []string{
		"429", "499", "500", "502", "503", "504", "529",
		"rate", "overloaded", "resource_exhausted", "server_error",
		"connection", "timeout", "temporary", "eof",
		"tls handshake", "no such host", "broken pipe",
	}
	for _, p := range retryablePatterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}

	return false
}
