package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestClassifyStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   FailureClass
	}{
		{http.StatusTooManyRequests, ClassRateLimited},
		{http.StatusUnauthorized, ClassPermanent},
		{http.StatusForbidden, ClassPermanent},
		{http.StatusBadRequest, ClassPermanent},
		{http.StatusUnprocessableEntity, ClassPermanent},
		{http.StatusRequestTimeout, ClassTransient},
		{http.StatusInternalServerError, ClassTransient},
		{http.StatusBadGateway, ClassTransient},
		{http.StatusServiceUnavailable, ClassTransient},
	}
	for _, tc := range cases {
		err := &StatusError{StatusCode: tc.status, Body: "boom"}
		if got := Classify(err); got != tc.want {
			t.Fatalf("status %d: expected class %s, got %s", tc.status, tc.want, got)
		}
	}
}

func TestClassifyWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("openai generate: %w", &StatusError{StatusCode: http.StatusTooManyRequests})
	if got := Classify(wrapped); got != ClassRateLimited {
		t.Fatalf("expected rate-limited class for wrapped 429, got %s", got)
	}
	if !errors.Is(wrapped, ErrRateLimited) {
		t.Fatal("expected wrapped 429 to match ErrRateLimited")
	}
}

func TestClassifyDeadline(t *testing.T) {
	if got := Classify(context.DeadlineExceeded); got != ClassTransient {
		t.Fatalf("expected transient class for deadline, got %s", got)
	}
}

func TestClassifyUnknownErrorIsTransient(t *testing.T) {
	if got := Classify(errors.New("connection refused")); got != ClassTransient {
		t.Fatalf("expected transient class, got %s", got)
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	delay, ok := ParseRetryAfter("30")
	if !ok || delay != 30*time.Second {
		t.Fatalf("expected 30s delay, got %v ok=%v", delay, ok)
	}
}

func TestParseRetryAfterInvalid(t *testing.T) {
	if _, ok := ParseRetryAfter("soon"); ok {
		t.Fatal("expected parse failure for junk value")
	}
	if _, ok := ParseRetryAfter("-5"); ok {
		t.Fatal("expected parse failure for negative value")
	}
}
