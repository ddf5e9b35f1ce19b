package reader

import (
	"fmt"
	"time"
)

// Kind classifies a failure for the protocol boundary.
type Kind string

const (
	// KindValidation is bad caller input; never retried.
	KindValidation Kind = "validation"

	// KindAuth is a rejected or missing credential; the caller has to fix
	// its configuration before retrying.
	KindAuth Kind = "auth"

	// KindRateLimited is upstream throttling. RetryAfter carries the hint
	// when the API supplied one; this layer never backs off on its own.
	KindRateLimited Kind = "rate-limited"

	// KindUnavailable is a network failure or 5xx; the whole request may
	// be retried by the caller.
	KindUnavailable Kind = "upstream-unavailable"

	// KindMalformed means the upstream response did not match the expected
	// schema. An API contract mismatch, not a usage error.
	KindMalformed Kind = "malformed-response"
)

// Error is the one failure type crossing the system boundary. Every upstream
// or validation failure is surfaced as one of these, never swallowed or
// downgraded along the way.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf builds an Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
