package storage

import (
	"context"
	"time"
)

// Handle is a backend-private, non-serializable reference to a native file
// or directory. Handles are owned by the host platform; the native adapter
// walks them but never interprets their contents.
type Handle interface {
	// ID returns an opaque identifier, stable for the life of the handle.
	ID() string

	// Name returns the item's display name.
	Name() string

	// IsDirectory reports whether the handle references a directory.
	IsDirectory() bool
}

// HandleInfo describes one child of a native directory.
type HandleInfo struct {
	Name         string
	IsDirectory  bool
	Size         int64
	ModifiedTime time.Time
	Handle       Handle
}

// Host is the native platform contract the disk backend is built on.
//
// It models a permissioned, handle-based directory API: files are addressed
// through opaque handles obtained by walking from a user-granted root, and
// access is gated by revocable, re-promptable permission.
type Host interface {
	// PickDirectory invokes the platform's directory chooser.
	// A user abort returns ErrCancelled; it is a normal outcome.
	PickDirectory(ctx context.Context) (Handle, error)

	// QueryPermission reports the current permission state for the handle
	// without prompting the user.
	QueryPermission(ctx context.Context, h Handle, write bool) PermissionState

	// RequestPermission may prompt the user and returns the resulting state.
	RequestPermission(ctx context.Context, h Handle, write bool) PermissionState

	// Entries lists the immediate children of a directory handle.
	Entries(ctx context.Context, dir Handle) ([]HandleInfo, error)

	// Child resolves the named child of a directory handle.
	// A missing child returns ErrNotFound.
	Child(ctx context.Context, dir Handle, name string) (Handle, error)

	// EnsureDirectory returns the named child directory, creating it if
	// missing.
	EnsureDirectory(ctx context.Context, dir Handle, name string) (Handle, error)

	// CreateFile returns the named child file, creating it if missing.
	CreateFile(ctx context.Context, dir Handle, name string) (Handle, error)

	// RemoveEntry removes the named child. When recursive is true a
	// directory and its contents are removed.
	RemoveEntry(ctx context.Context, dir Handle, name string, recursive bool) error

	// ReadAll returns the complete binary content of a file handle.
	ReadAll(ctx context.Context, f Handle) ([]byte, error)

	// WriteAll fully overwrites the content of a file handle.
	WriteAll(ctx context.Context, f Handle, data []byte) error

	// Stat returns metadata for a handle.
	Stat(ctx context.Context, h Handle) (HandleInfo, error)
}

// TokenStore persists one directory handle reference across sessions.
//
// The handle itself is not serializable by generic means; the host provides
// the persist/restore primitives and this contract hides them. Absence of a
// persisted token surfaces as ErrNotFound from Restore.
type TokenStore interface {
	// Persist stores a reference to the handle.
	Persist(ctx context.Context, h Handle) error

	// Restore returns the previously persisted handle, or ErrNotFound.
	Restore(ctx context.Context) (Handle, error)

	// Clear deletes the persisted reference. Clearing an empty store is
	// not an error.
	Clear(ctx context.Context) error
}

// RootTokenKey is the fixed key under which the native root directory
// reference is persisted in the key-value store.
const RootTokenKey = "storage.native.root"
