package harness

import "errors"

// Errors returned by session operations.
var (
	// ErrFileNotFound indicates a file reference did not resolve.
	ErrFileNotFound = errors.New("file not found")

	// ErrMarkerNotFound indicates a marker name did not resolve.
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrMarkerInvalidated indicates a marker's position was destroyed by
	// earlier edits and can no longer be navigated to.
	ErrMarkerInvalidated = errors.New("marker position invalidated by unrecoverable edits")

	// ErrRangeInvalidated indicates a range endpoint was destroyed by
	// earlier edits.
	ErrRangeInvalidated = errors.New("range position invalidated by unrecoverable edits")

	// ErrCrossFileSelection indicates selection endpoints in two different
	// files. This is a contract violation, not a recoverable condition.
	ErrCrossFileSelection = errors.New("selection endpoints are in different files")
)
