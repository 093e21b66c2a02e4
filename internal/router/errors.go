package router

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sciados/campaign-backend-sub004/internal/provider"
	"github.com/sciados/campaign-backend-sub004/internal/services"
)

// ErrNoProvidersAvailable means the registry produced no eligible
// candidates for the requested capability.
var ErrNoProvidersAvailable = errors.New("no providers available")

// ErrAllProvidersExhausted is the sentinel matched by errors.Is against
// an *ExhaustedError.
var ErrAllProvidersExhausted = errors.New("all providers exhausted")

// Attempt records one classified candidate failure, in the order the
// candidates were tried.
type Attempt struct {
	Provider string
	Class    services.FailureClass
	Err      error
	Latency  time.Duration
}

// ExhaustedError carries the ordered per-candidate attempt log so
// callers and tests can inspect exactly why each candidate failed.
type ExhaustedError struct {
	Capability provider.Capability
	Attempts   []Attempt
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %s providers exhausted (%d attempts)", e.Capability, len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; %s: %s: %v", a.Provider, a.Class, a.Err)
	}
	return b.String()
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrAllProvidersExhausted
}
