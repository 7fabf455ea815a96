package storage

import "time"

// Entry describes one file system item in a directory listing.
type Entry struct {
	// Path is the absolute, slash-separated, canonical path of the item.
	// It is unique within one ScanDirectory result set.
	Path string

	// IsDirectory reports whether the item is a directory.
	IsDirectory bool

	// Size is the item's size in bytes. Zero for directories.
	Size int64

	// ModifiedTime is the last modification time.
	// Only meaningful when IsDirectory is false.
	ModifiedTime time.Time

	// Handle is a backend-private reference to the item. Only the native
	// backend populates it; no other component may interpret it.
	Handle Handle
}

// PermissionState is the tri-state access-grant status for
// permission-gated backends.
type PermissionState int

const (
	// PermissionGranted - access has been granted.
	PermissionGranted PermissionState = iota

	// PermissionDenied - access was explicitly denied.
	PermissionDenied

	// PermissionPrompt - the user must be prompted before access is known.
	PermissionPrompt
)

// String returns a string representation of the permission state.
func (s PermissionState) String() string {
	switch s {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	case PermissionPrompt:
		return "prompt"
	default:
		return "unknown"
	}
}
