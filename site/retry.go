package site

import (
	"context"
	"net/http"
	"time"
)

// BackoffMode selects how retry delays grow between attempts.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

// RetryPolicy describes how transient request failures are retried. It is
// immutable after construction.
type RetryPolicy struct {
	Mode       BackoffMode   // fixed|linear|exponential
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // retry attempts after the first failure
}

// DefaultRetryPolicy retries twice with linear backoff from one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Mode: BackoffLinear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}
}

// Delay returns the backoff delay for the given retry attempt number
// (1-based: first retry => 1).
func (p RetryPolicy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	switch p.Mode {
	case BackoffFixed:
		return p.Initial
	case BackoffExponential:
		d := p.Initial * (1 << (retryCount - 1))
		if d > p.Max {
			return p.Max
		}
		return d
	default: // linear
		d := time.Duration(retryCount) * p.Initial
		if d > p.Max {
			return p.Max
		}
		return d
	}
}

// WithRetry makes the site retry transport errors, 5xx responses and 429
// responses per the given policy. Request bodies are rebuilt per attempt.
func WithRetry(p RetryPolicy) Option {
	return func(s *Site) error {
		s.retry = &p
		return nil
	}
}

// retryable reports whether a failed attempt is worth repeating.
func retryable(resp *Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode >= http.StatusInternalServerError ||
		resp.StatusCode == http.StatusTooManyRequests
}

// doWithRetry runs attempt until it yields a non-retryable outcome or the
// policy's budget is spent.
func doWithRetry(ctx context.Context, p RetryPolicy, attempt func() (*Response, error)) (*Response, error) {
	resp, err := attempt()
	for retryCount := 1; retryCount <= p.MaxRetries && retryable(resp, err); retryCount++ {
		select {
		case <-ctx.Done():
			return resp, err
		case <-time.After(p.Delay(retryCount)):
		}
		resp, err = attempt()
	}
	return resp, err
}
