package storage

import "errors"

// Storage error taxonomy. Callers discriminate with errors.Is.
var (
	// ErrNotFound is returned when a path does not resolve.
	ErrNotFound = errors.New("path not found")

	// ErrPermissionDenied is returned when an operation is attempted
	// without granted access. Distinct from ErrNotFound.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrCancelled is returned when an interactive flow (directory
	// selection) is aborted by the user. It is a normal negative outcome,
	// not a fault, and is absorbed before reaching adapter callers.
	ErrCancelled = errors.New("cancelled by user")

	// ErrUnavailable is returned when the backing session or connection
	// cannot be established.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrNoDirectory is returned by the native backend when no root
	// directory has been selected.
	ErrNoDirectory = errors.New("no directory selected")

	// ErrNotDirectory is returned when a path segment resolves to a file
	// where a directory is required.
	ErrNotDirectory = errors.New("not a directory")
)
