package domain

import "errors"

// Sentinel errors for upstream fetch classification. They stay internal to
// the subsystem: public service operations absorb them and degrade to empty
// results instead of failing the caller.
var (
	// ErrRateLimited indicates the upstream rejected the request with a
	// rate-limit signal (HTTP 429 / "too many requests"). Retryable.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrUnavailable indicates a transport-level failure reaching the
	// upstream. Not retried.
	ErrUnavailable = errors.New("upstream unreachable")

	// ErrMalformed indicates the upstream responded with a body that is not
	// valid JSON for the expected shape. Not retried.
	ErrMalformed = errors.New("malformed upstream response")

	// ErrNotOwned indicates a selection referenced a universe the user does
	// not own.
	ErrNotOwned = errors.New("universe not owned by user")

	// ErrNoSession indicates an operation referenced a user without an
	// active session.
	ErrNoSession = errors.New("no active session for user")
)
