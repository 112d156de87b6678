package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork marks failures talking to a remote backend.
	ErrNetwork = errors.New("network error")
	// ErrClosed is returned by remote backends after Close.
	ErrClosed = errors.New("cache closed")
)

// transientError marks an error as worth another attempt.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Retryable marks err for RetryWithBackoff. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

// IsRetryable reports whether err, or an error it wraps, was marked with
// Retryable.
func IsRetryable(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// retryDelays are the pauses between the attempts of RetryWithBackoff.
var retryDelays = []time.Duration{time.Second, 2 * time.Second}

// RetryWithBackoff calls fn until it succeeds, returns an unmarked error,
// or has been tried once more than there are retry delays.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	err := fn()
	for _, d := range retryDelays {
		if !IsRetryable(err) {
			return err
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = fn()
	}
	return err
}
