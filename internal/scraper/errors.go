package scraper

import (
	"errors"
	"fmt"
	"time"
)

// SessionUnavailableError means the browser runtime could not be started or
// connected to. It is fatal for the whole run.
type SessionUnavailableError struct {
	Err error
}

func (e *SessionUnavailableError) Error() string {
	return fmt.Sprintf("browser session unavailable: %v. Chrome/Chromium may not be installed or reachable in this environment", e.Err)
}

func (e *SessionUnavailableError) Unwrap() error {
	return e.Err
}

// NavigationTimeoutError means the browser started but the dealer page could
// not be reached or rendered within the configured interval. Also fatal for
// the run, and surfaced distinctly from SessionUnavailableError.
type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation to %s failed within %s: %v", e.URL, e.Timeout, e.Err)
}

func (e *NavigationTimeoutError) Unwrap() error {
	return e.Err
}

// IsSessionUnavailable reports whether err is a SessionUnavailableError.
func IsSessionUnavailable(err error) bool {
	var target *SessionUnavailableError
	return errors.As(err, &target)
}

// IsNavigationTimeout reports whether err is a NavigationTimeoutError.
func IsNavigationTimeout(err error) bool {
	var target *NavigationTimeoutError
	return errors.As(err, &target)
}
