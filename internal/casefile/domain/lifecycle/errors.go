package lifecycle

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a transition attempt was rejected.
type ErrorKind int

const (
	// KindCaseNotFound means the case id does not resolve.
	KindCaseNotFound ErrorKind = iota
	// KindStaleState means the caller's assumed state no longer matches the
	// stored current state. The error carries the actual state.
	KindStaleState
	// KindInvalidEdge means no such transition exists, regardless of actor.
	KindInvalidEdge
	// KindUnauthorized means the edge exists but the actor's role or identity
	// is not permitted to perform it.
	KindUnauthorized
	// KindPreconditionFailed means a required field is missing or invalid.
	KindPreconditionFailed
	// KindDownstreamFailure means a required synchronous collaborator failed
	// and the whole transition was rolled back.
	KindDownstreamFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindCaseNotFound:
		return "case_not_found"
	case KindStaleState:
		return "stale_state"
	case KindInvalidEdge:
		return "invalid_edge"
	case KindUnauthorized:
		return "unauthorized"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindDownstreamFailure:
		return "downstream_failure"
	default:
		return "unknown"
	}
}

// Error is the structured rejection returned by transition attempts. All
// rejections are non-fatal results; none crash the process.
type Error struct {
	Kind    ErrorKind
	Message string
	// ActualState is set for KindStaleState so the caller can refresh and retry.
	ActualState State
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewCaseNotFound builds a case-not-found rejection.
func NewCaseNotFound() *Error {
	return &Error{Kind: KindCaseNotFound, Message: "case not found"}
}

// NewStaleState builds a stale-state rejection carrying the actual state.
func NewStaleState(actual State) *Error {
	return &Error{
		Kind:        KindStaleState,
		Message:     fmt.Sprintf("current state is %s", actual),
		ActualState: actual,
	}
}

// NewInvalidEdge builds a rejection for a transition absent from the guard table.
func NewInvalidEdge(from, to State) *Error {
	return &Error{
		Kind:    KindInvalidEdge,
		Message: fmt.Sprintf("no transition %s -> %s", from, to),
	}
}

// NewUnauthorized builds a role/identity rejection.
func NewUnauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// NewPreconditionFailed builds a missing/invalid-field rejection.
func NewPreconditionFailed(msg string) *Error {
	return &Error{Kind: KindPreconditionFailed, Message: msg}
}

// NewDownstreamFailure wraps a collaborator or commit failure. The cause is
// preserved for logging.
func NewDownstreamFailure(msg string, cause error) *Error {
	return &Error{Kind: KindDownstreamFailure, Message: msg, cause: cause}
}

// KindOf extracts the error kind, reporting ok=false for foreign errors.
func KindOf(err error) (ErrorKind, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a lifecycle error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
