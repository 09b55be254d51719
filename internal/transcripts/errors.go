package transcripts

import "errors"

var (
	// ErrNotFound indicates a mission or page reference did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrLockConflict indicates another cleaner actively holds the page.
	// Callers should route the user to a different page rather than fail.
	ErrLockConflict = errors.New("page locked by another cleaner")

	// ErrLockExpired indicates the caller's lock was missing, expired, or
	// held by someone else at commit time. The submitted text must be
	// surfaced back to the user, never discarded.
	ErrLockExpired = errors.New("lock expired before save")
)
