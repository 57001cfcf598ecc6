package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/tara-vision/codedoctor/internal/log"
)

// RetryPolicy controls how completions are retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy retries transient failures three times.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:    3,
	InitialBackoff: 1 * time.Second,
	MaxBackoff:     30 * time.Second,
}

// isRetryable checks if an error is transient and worth retrying
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, context.Canceled) {
		return false
	}
	// Rate limits and server errors
	if status := statusCode(err); status != 0 {
		return status == http.StatusTooManyRequests || status >= 500
	}
	// Network timeouts
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// Connection errors
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	// Check error message for common transient patterns
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "no such host") ||
		strings.Contains(errMsg, "temporary failure")
}

// newRetrier builds the fortify retrier for policy. Only errors accepted by
// isRetryable are retried; the delay doubles up to MaxBackoff.
func newRetrier(policy RetryPolicy, operation string) retry.Retry[*Response] {
	attempts := max(policy.MaxAttempts, 1)
	return retry.New[*Response](retry.Config{
		MaxAttempts:   attempts,
		InitialDelay:  policy.InitialBackoff,
		MaxDelay:      policy.MaxBackoff,
		BackoffPolicy: retry.BackoffExponential,
		IsRetryable:   isRetryable,
		OnRetry: func(attempt int, err error) {
			log.Component("provider").Warn("transient failure, retrying",
				"operation", operation,
				"attempt", attempt,
				"max_attempts", attempts,
				"error", err)
		},
	})
}
