package fetch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-mirror-gateway/internal/domain"
)

var (
	// ErrUnavailable is the minimal failure contract: no result is available.
	ErrUnavailable = errors.New("no provider produced a valid response")
	// ErrExhausted means every provider was attempted without success.
	ErrExhausted = fmt.Errorf("%w: exhausted providers", ErrUnavailable)
	// ErrDeadlineExceeded means the time budget ran out before every provider was tried.
	ErrDeadlineExceeded = fmt.Errorf("%w: deadline exceeded", ErrUnavailable)
	// ErrEmptyPath is returned for a blank resource path; no provider is contacted.
	ErrEmptyPath = errors.New("resource path is empty")
)

// ResolveError is the failure returned by Resolve. It unwraps to
// ErrExhausted or ErrDeadlineExceeded and keeps the attempt trail for
// diagnostics.
type ResolveError struct {
	Path     string
	Reason   error
	Attempts []domain.Attempt
}

func (e *ResolveError) Error() string {
	if e == nil {
		return ErrUnavailable.Error()
	}
	reason := e.Reason
	if reason == nil {
		reason = ErrUnavailable
	}
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("resolve %s: %v", e.Path, reason)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.ProviderID+"="+string(a.Outcome))
	}
	return fmt.Sprintf("resolve %s: %v (%s)", e.Path, reason, strings.Join(parts, ", "))
}

func (e *ResolveError) Unwrap() error {
	if e == nil || e.Reason == nil {
		return ErrUnavailable
	}
	return e.Reason
}
