package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrRateLimited    = errors.New("rate limited")
	ErrAuth           = errors.New("authentication failure")
	ErrInvalidRequest = errors.New("invalid request")
	ErrTimeout        = errors.New("timeout")
	ErrTransient      = errors.New("transient failure")
)

// FailureClass buckets adapter failures for health tracking. Rate limits put a
// provider on cooldown, transient failures count toward the disable threshold,
// and permanent failures are routed past but logged distinctly because
// retrying later will not help without configuration changes.
type FailureClass string

const (
	ClassRateLimited FailureClass = "rate_limited"
	ClassTransient   FailureClass = "transient"
	ClassPermanent   FailureClass = "permanent"
)

// StatusError captures a non-2xx vendor response.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Unwrap maps the status code onto the matching sentinel so callers can use
// errors.Is without inspecting codes themselves.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrAuth
	case e.StatusCode == http.StatusBadRequest,
		e.StatusCode == http.StatusNotFound,
		e.StatusCode == http.StatusUnprocessableEntity:
		return ErrInvalidRequest
	case e.StatusCode == http.StatusRequestTimeout:
		return ErrTimeout
	default:
		return ErrTransient
	}
}

// Classify maps an adapter error onto the failure class the tracker acts on.
// Unknown errors (connection refused, DNS) are treated as transient.
func Classify(err error) FailureClass {
	if err == nil {
		return ClassTransient
	}
	switch {
	case errors.Is(err, ErrRateLimited):
		return ClassRateLimited
	case errors.Is(err, ErrAuth), errors.Is(err, ErrInvalidRequest):
		return ClassPermanent
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return ClassTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ClassTransient
	}
	return ClassTransient
}

// ParseRetryAfter interprets a Retry-After header as either a delay in seconds
// or an HTTP date.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
