package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// TimeoutError means the page did not settle inside its time budget
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s timed out after %s", e.URL, e.Timeout)
	}
	return fmt.Sprintf("%s timed out after %s: %v", e.URL, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// FetchError covers every other transport or navigation failure.
// StatusCode is zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err carries a TimeoutError
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// classify turns a raw transport error into a TimeoutError or FetchError
func classify(url string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{URL: url, Timeout: timeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{URL: url, Timeout: timeout, Err: err}
	}
	return &FetchError{URL: url, Err: err}
}
