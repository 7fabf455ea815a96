// Package storage provides the file-access abstraction of the editor.
//
// Every storage backend implements the Adapter contract, which lets the
// rest of the application open, edit and save font project files without
// knowing which substrate is active: an always-available in-memory
// filesystem or a permissioned, handle-based native directory tree.
package storage

import "context"

// Adapter is the capability contract every storage backend implements.
//
// Paths are absolute, slash-separated, with "/" denoting the backend root.
// Relative segments are not resolved; callers must pre-normalize.
//
// Enumeration operations (ScanDirectory, FileExists) absorb failures and
// return safe empty defaults. Mutating operations raise, since silently
// no-op-ing a write is worse than a visible failure.
type Adapter interface {
	// ScanDirectory lists the immediate children of path, keyed by name.
	// A missing or unreadable directory yields an empty map, never an error.
	ScanDirectory(ctx context.Context, path string) (map[string]Entry, error)

	// ReadFile returns the complete binary content of the file at path.
	// Content is returned byte-for-byte; no text decoding is performed.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile fully overwrites the target, creating it if absent.
	// Content is persisted losslessly as bytes.
	WriteFile(ctx context.Context, path string, data []byte) error

	// CreateFolder creates the directory and all missing parents.
	// It is idempotent if the folder already exists.
	CreateFolder(ctx context.Context, path string) error

	// DeleteItem removes a file, or a directory and its full contents
	// when isDirectory is true.
	DeleteItem(ctx context.Context, path string, isDirectory bool) error

	// FileExists reports whether path exists. Any lookup failure is
	// treated as non-existence; it never returns an error in practice.
	FileExists(ctx context.Context, path string) (bool, error)
}

// PermissionAdapter is implemented by backends that gate access behind
// user permission. Backends without a permission model omit it.
type PermissionAdapter interface {
	// CheckPermission queries the current state without prompting.
	CheckPermission(ctx context.Context) PermissionState

	// RequestPermission may trigger a user-facing prompt and returns the
	// resulting state.
	RequestPermission(ctx context.Context) PermissionState
}

// Permission returns the adapter's current permission state.
// Adapters that do not gate access are implicitly granted.
func Permission(ctx context.Context, a Adapter) PermissionState {
	if pa, ok := a.(PermissionAdapter); ok {
		return pa.CheckPermission(ctx)
	}
	return PermissionGranted
}

// RequestPermission requests access from the adapter, prompting if needed.
// Adapters that do not gate access are implicitly granted.
func RequestPermission(ctx context.Context, a Adapter) PermissionState {
	if pa, ok := a.(PermissionAdapter); ok {
		return pa.RequestPermission(ctx)
	}
	return PermissionGranted
}
