package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// NativeAdapter implements Adapter over a permissioned, handle-based native
// directory tree.
//
// The adapter owns at most one root handle, granted interactively by the
// user and persisted through a TokenStore so it can be adopted on the next
// start. Permission is never assumed from a restored handle; it is
// re-queried independently. Paths are resolved by walking the handle tree
// segment by segment from the root on every operation; intermediate handles
// are not cached across calls.
type NativeAdapter struct {
	mu     sync.RWMutex
	host   Host
	tokens TokenStore
	root   Handle
	perm   PermissionState
	log    *zap.Logger
}

// NewNativeAdapter creates a native adapter with no directory selected.
// Call Restore to adopt a previously persisted root handle.
func NewNativeAdapter(host Host, tokens TokenStore, log *zap.Logger) *NativeAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &NativeAdapter{
		host:   host,
		tokens: tokens,
		perm:   PermissionPrompt,
		log:    log,
	}
}

var (
	_ Adapter           = (*NativeAdapter)(nil)
	_ PermissionAdapter = (*NativeAdapter)(nil)
)

// Restore adopts a previously persisted root handle, if any.
// A missing token is not an error. A restored handle does not carry
// permission; the current state is re-queried from the host.
func (n *NativeAdapter) Restore(ctx context.Context) error {
	h, err := n.tokens.Restore(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("restoring directory token: %w", err)
	}
	if !h.IsDirectory() {
		n.log.Warn("persisted token is not a directory handle, ignoring",
			zap.String("name", h.Name()))
		return nil
	}

	n.mu.Lock()
	n.root = h
	n.perm = n.host.QueryPermission(ctx, h, true)
	n.mu.Unlock()

	n.log.Info("restored directory handle",
		zap.String("name", h.Name()),
		zap.Stringer("permission", n.CheckPermission(ctx)))
	return nil
}

// SelectDirectory runs the platform's directory chooser.
// It returns false with no error when the user cancels. On success the new
// handle is persisted and read/write permission is requested immediately.
func (n *NativeAdapter) SelectDirectory(ctx context.Context) (bool, error) {
	h, err := n.host.PickDirectory(ctx)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			n.log.Info("directory selection cancelled")
			return false, nil
		}
		return false, fmt.Errorf("selecting directory: %w", err)
	}

	if err := n.tokens.Persist(ctx, h); err != nil {
		return false, fmt.Errorf("persisting directory token: %w", err)
	}

	perm := n.host.RequestPermission(ctx, h, true)

	n.mu.Lock()
	n.root = h
	n.perm = perm
	n.mu.Unlock()

	n.log.Info("directory selected",
		zap.String("name", h.Name()),
		zap.Stringer("permission", perm))
	return true, nil
}

// Clear revokes the directory association: the persisted token is deleted
// and in-memory state resets to "no directory selected".
func (n *NativeAdapter) Clear(ctx context.Context) error {
	if err := n.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clearing directory token: %w", err)
	}

	n.mu.Lock()
	n.root = nil
	n.perm = PermissionPrompt
	n.mu.Unlock()

	n.log.Info("directory association cleared")
	return nil
}

// HasRoot reports whether a root directory has been selected or restored.
func (n *NativeAdapter) HasRoot() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.root != nil
}

// Root returns the selected root handle, or nil.
func (n *NativeAdapter) Root() Handle {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.root
}

// RootName returns the display name of the selected directory, or "".
func (n *NativeAdapter) RootName() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.root == nil {
		return ""
	}
	return n.root.Name()
}

// CheckPermission queries the current permission state without prompting.
func (n *NativeAdapter) CheckPermission(ctx context.Context) PermissionState {
	n.mu.RLock()
	root := n.root
	n.mu.RUnlock()

	if root == nil {
		return PermissionPrompt
	}

	perm := n.host.QueryPermission(ctx, root, true)
	n.mu.Lock()
	n.perm = perm
	n.mu.Unlock()
	return perm
}

// RequestPermission may prompt the user and returns the resulting state.
func (n *NativeAdapter) RequestPermission(ctx context.Context) PermissionState {
	n.mu.RLock()
	root := n.root
	n.mu.RUnlock()

	if root == nil {
		return PermissionPrompt
	}

	perm := n.host.RequestPermission(ctx, root, true)
	n.mu.Lock()
	n.perm = perm
	n.mu.Unlock()
	return perm
}

// resolve walks the handle tree from the root, one segment at a time.
// A segment that does not resolve yields ErrNotFound; walking through a
// file yields ErrNotDirectory. Both are lookup errors, distinct from
// permission errors raised by the host.
func (n *NativeAdapter) resolve(ctx context.Context, p string) (Handle, error) {
	n.mu.RLock()
	root := n.root
	n.mu.RUnlock()

	if root == nil {
		return nil, ErrNoDirectory
	}

	current := root
	for _, segment := range SplitPath(p) {
		if !current.IsDirectory() {
			return nil, fmt.Errorf("resolve %s: %w", p, ErrNotDirectory)
		}
		child, err := n.host.Child(ctx, current, segment)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		current = child
	}
	return current, nil
}

// resolveParent resolves the directory containing p and returns it with the
// final path segment.
func (n *NativeAdapter) resolveParent(ctx context.Context, p string) (Handle, string, error) {
	segments := SplitPath(p)
	if len(segments) == 0 {
		return nil, "", fmt.Errorf("resolve %s: path has no parent", p)
	}

	parent := JoinPath("/", segments[:len(segments)-1]...)
	dir, err := n.resolve(ctx, parent)
	if err != nil {
		return nil, "", err
	}
	if !dir.IsDirectory() {
		return nil, "", fmt.Errorf("resolve %s: %w", parent, ErrNotDirectory)
	}
	return dir, segments[len(segments)-1], nil
}

// ensureDir creates (if needed) and resolves the directory at p.
func (n *NativeAdapter) ensureDir(ctx context.Context, p string) (Handle, error) {
	n.mu.RLock()
	root := n.root
	n.mu.RUnlock()

	if root == nil {
		return nil, ErrNoDirectory
	}

	current := root
	for _, segment := range SplitPath(p) {
		dir, err := n.host.EnsureDirectory(ctx, current, segment)
		if err != nil {
			return nil, fmt.Errorf("create folder %s: %w", p, err)
		}
		current = dir
	}
	return current, nil
}

// failFastWrite returns an error when the last known permission state
// forbids mutation. Writes while denied fail visibly instead of no-op-ing.
func (n *NativeAdapter) failFastWrite(p string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.root == nil {
		return ErrNoDirectory
	}
	if n.perm == PermissionDenied {
		return fmt.Errorf("write %s: %w", p, ErrPermissionDenied)
	}
	return nil
}

// ScanDirectory lists the immediate children of dir.
// All failures (missing directory, revoked permission, stale handle) are
// absorbed into an empty listing and logged.
func (n *NativeAdapter) ScanDirectory(ctx context.Context, dir string) (map[string]Entry, error) {
	entries := make(map[string]Entry)

	h, err := n.resolve(ctx, dir)
	if err != nil {
		n.log.Warn("scan failed, returning empty listing",
			zap.String("path", dir), zap.Error(err))
		return entries, nil
	}
	if !h.IsDirectory() {
		n.log.Warn("scan target is not a directory", zap.String("path", dir))
		return entries, nil
	}

	infos, err := n.host.Entries(ctx, h)
	if err != nil {
		n.log.Warn("scan failed, returning empty listing",
			zap.String("path", dir), zap.Error(err))
		return entries, nil
	}

	base := CleanPath(dir)
	for _, info := range infos {
		entries[info.Name] = Entry{
			Path:         JoinPath(base, info.Name),
			IsDirectory:  info.IsDirectory,
			Size:         info.Size,
			ModifiedTime: info.ModifiedTime,
			Handle:       info.Handle,
		}
	}
	return entries, nil
}

// ReadFile returns the complete binary content at p.
func (n *NativeAdapter) ReadFile(ctx context.Context, p string) ([]byte, error) {
	h, err := n.resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if h.IsDirectory() {
		return nil, fmt.Errorf("read %s: %w", p, ErrNotFound)
	}

	data, err := n.host.ReadAll(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// WriteFile fully overwrites the file at p, creating it and any missing
// parent directories.
func (n *NativeAdapter) WriteFile(ctx context.Context, p string, data []byte) error {
	if err := n.failFastWrite(p); err != nil {
		return err
	}

	segments := SplitPath(p)
	if len(segments) == 0 {
		return fmt.Errorf("write %s: %w", p, ErrNotFound)
	}

	dir, err := n.ensureDir(ctx, JoinPath("/", segments[:len(segments)-1]...))
	if err != nil {
		return err
	}
	f, err := n.host.CreateFile(ctx, dir, segments[len(segments)-1])
	if err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := n.host.WriteAll(ctx, f, data); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// CreateFolder creates the directory at p and all missing parents.
func (n *NativeAdapter) CreateFolder(ctx context.Context, p string) error {
	if err := n.failFastWrite(p); err != nil {
		return err
	}
	_, err := n.ensureDir(ctx, p)
	return err
}

// DeleteItem removes a file, or a directory tree when isDirectory is true.
func (n *NativeAdapter) DeleteItem(ctx context.Context, p string, isDirectory bool) error {
	if err := n.failFastWrite(p); err != nil {
		return err
	}

	dir, name, err := n.resolveParent(ctx, p)
	if err != nil {
		return err
	}
	if err := n.host.RemoveEntry(ctx, dir, name, isDirectory); err != nil {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

// FileExists reports whether p resolves. Any failure means non-existence.
func (n *NativeAdapter) FileExists(ctx context.Context, p string) (bool, error) {
	if _, err := n.resolve(ctx, p); err != nil {
		return false, nil
	}
	return true, nil
}

// ListTree lists the subtree under start, bounded by maxDepth segments.
//
// It is used for bulk scans such as populating the file browser quickly.
// Depth is a hard cutoff. A subtree that fails during traversal (permission
// revoked mid-walk, stale handle) is skipped and its siblings continue.
func (n *NativeAdapter) ListTree(ctx context.Context, start string, maxDepth int) (map[string]Entry, error) {
	if maxDepth < 1 {
		maxDepth = DefaultTreeDepth
	}

	result := make(map[string]Entry)
	h, err := n.resolve(ctx, start)
	if err != nil {
		n.log.Warn("tree listing failed, returning empty listing",
			zap.String("path", start), zap.Error(err))
		return result, nil
	}

	n.listTree(ctx, h, CleanPath(start), maxDepth, result)
	return result, nil
}

func (n *NativeAdapter) listTree(ctx context.Context, dir Handle, base string, depth int, result map[string]Entry) {
	if depth == 0 || !dir.IsDirectory() {
		return
	}

	infos, err := n.host.Entries(ctx, dir)
	if err != nil {
		n.log.Warn("skipping unreadable subtree",
			zap.String("path", base), zap.Error(err))
		return
	}

	for _, info := range infos {
		p := JoinPath(base, info.Name)
		result[p] = Entry{
			Path:         p,
			IsDirectory:  info.IsDirectory,
			Size:         info.Size,
			ModifiedTime: info.ModifiedTime,
			Handle:       info.Handle,
		}
		if info.IsDirectory && info.Handle != nil {
			n.listTree(ctx, info.Handle, p, depth-1, result)
		}
	}
}
