// Package oshost implements the storage.Host contract over the operating
// system's file system.
//
// Desktop builds use it to back the disk plugin; tests use it to exercise
// the native adapter against a real directory tree. Handles wrap absolute
// paths plus a process-unique id, and the permission model is supplied by a
// pluggable Gate so the adapter's tri-state machine can be driven without a
// real platform prompt.
package oshost

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/glyphdesk/glyphdesk/internal/storage"
)

// PickFunc supplies the platform directory chooser. It returns the chosen
// absolute path, or storage.ErrCancelled when the user aborts.
type PickFunc func(ctx context.Context) (string, error)

// Gate decides permission for a root directory. Implementations may be
// stateful: a Request outcome is typically remembered and reported by
// later Query calls.
type Gate interface {
	// Query reports the current state without prompting.
	Query(root string, write bool) storage.PermissionState

	// Request may prompt and returns the resulting state.
	Request(root string, write bool) storage.PermissionState
}

// Host implements storage.Host over the OS file system.
type Host struct {
	pick PickFunc
	gate Gate
}

// New creates an OS host. A nil gate grants everything unconditionally.
// A nil picker makes PickDirectory fail; hosts embedded in UIs always
// provide one.
func New(pick PickFunc, gate Gate) *Host {
	if gate == nil {
		gate = AutoGrantGate{}
	}
	return &Host{pick: pick, gate: gate}
}

var _ storage.Host = (*Host)(nil)

// handle is an opaque reference to an OS path.
type handle struct {
	id   string
	path string
	dir  bool
}

func newHandle(path string, dir bool) *handle {
	return &handle{id: uuid.NewString(), path: path, dir: dir}
}

func (h *handle) ID() string        { return h.id }
func (h *handle) Name() string      { return filepath.Base(h.path) }
func (h *handle) IsDirectory() bool { return h.dir }

// Path returns the absolute OS path behind a handle produced by this host.
// It returns false for handles from other hosts.
func Path(h storage.Handle) (string, bool) {
	oh, ok := h.(*handle)
	if !ok {
		return "", false
	}
	return oh.path, true
}

// DirectoryHandle wraps an existing directory path as a handle.
// Used when restoring a persisted token.
func DirectoryHandle(path string) (storage.Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory %s: %w", path, storage.ErrNotFound)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("directory %s: %w", path, storage.ErrNotDirectory)
	}
	return newHandle(path, true), nil
}

// PickDirectory invokes the configured chooser.
func (o *Host) PickDirectory(ctx context.Context) (storage.Handle, error) {
	if o.pick == nil {
		return nil, errors.New("no directory picker configured")
	}
	path, err := o.pick(ctx)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return DirectoryHandle(abs)
}

// QueryPermission reports the gate's current answer for the handle.
func (o *Host) QueryPermission(_ context.Context, h storage.Handle, write bool) storage.PermissionState {
	oh, ok := h.(*handle)
	if !ok {
		return storage.PermissionDenied
	}
	return o.gate.Query(oh.path, write)
}

// RequestPermission asks the gate, prompting if it chooses to.
func (o *Host) RequestPermission(_ context.Context, h storage.Handle, write bool) storage.PermissionState {
	oh, ok := h.(*handle)
	if !ok {
		return storage.PermissionDenied
	}
	return o.gate.Request(oh.path, write)
}

// Entries lists the immediate children of a directory handle.
// Children that cannot be stat-ed are skipped.
func (o *Host) Entries(_ context.Context, dir storage.Handle) ([]storage.HandleInfo, error) {
	path, err := o.dirPath(dir)
	if err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, o.classify(path, err)
	}

	infos := make([]storage.HandleInfo, 0, len(dirents))
	for _, d := range dirents {
		fi, err := d.Info()
		if err != nil {
			continue
		}
		child := filepath.Join(path, d.Name())
		infos = append(infos, handleInfo(child, fi))
	}
	return infos, nil
}

// Child resolves the named child of a directory handle.
func (o *Host) Child(_ context.Context, dir storage.Handle, name string) (storage.Handle, error) {
	path, err := o.dirPath(dir)
	if err != nil {
		return nil, err
	}

	child := filepath.Join(path, name)
	fi, err := os.Stat(child)
	if err != nil {
		return nil, o.classify(child, err)
	}
	return newHandle(child, fi.IsDir()), nil
}

// EnsureDirectory returns the named child directory, creating it if missing.
func (o *Host) EnsureDirectory(_ context.Context, dir storage.Handle, name string) (storage.Handle, error) {
	path, err := o.dirPath(dir)
	if err != nil {
		return nil, err
	}

	child := filepath.Join(path, name)
	if err := os.MkdirAll(child, 0o755); err != nil {
		return nil, o.classify(child, err)
	}
	return newHandle(child, true), nil
}

// CreateFile returns the named child file, creating it if missing.
func (o *Host) CreateFile(_ context.Context, dir storage.Handle, name string) (storage.Handle, error) {
	path, err := o.dirPath(dir)
	if err != nil {
		return nil, err
	}

	child := filepath.Join(path, name)
	f, err := os.OpenFile(child, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, o.classify(child, err)
	}
	f.Close()
	return newHandle(child, false), nil
}

// RemoveEntry removes the named child of a directory handle.
func (o *Host) RemoveEntry(_ context.Context, dir storage.Handle, name string, recursive bool) error {
	path, err := o.dirPath(dir)
	if err != nil {
		return err
	}

	child := filepath.Join(path, name)
	if _, err := os.Stat(child); err != nil {
		return o.classify(child, err)
	}
	if recursive {
		return os.RemoveAll(child)
	}
	return os.Remove(child)
}

// ReadAll returns the complete binary content of a file handle.
func (o *Host) ReadAll(_ context.Context, f storage.Handle) ([]byte, error) {
	fh, ok := f.(*handle)
	if !ok {
		return nil, errForeignHandle
	}
	data, err := os.ReadFile(fh.path)
	if err != nil {
		return nil, o.classify(fh.path, err)
	}
	return data, nil
}

// WriteAll fully overwrites the content of a file handle.
func (o *Host) WriteAll(_ context.Context, f storage.Handle, data []byte) error {
	fh, ok := f.(*handle)
	if !ok {
		return errForeignHandle
	}
	if err := os.WriteFile(fh.path, data, 0o644); err != nil {
		return o.classify(fh.path, err)
	}
	return nil
}

// Stat returns metadata for a handle.
func (o *Host) Stat(_ context.Context, h storage.Handle) (storage.HandleInfo, error) {
	oh, ok := h.(*handle)
	if !ok {
		return storage.HandleInfo{}, errForeignHandle
	}
	fi, err := os.Stat(oh.path)
	if err != nil {
		return storage.HandleInfo{}, o.classify(oh.path, err)
	}
	return handleInfo(oh.path, fi), nil
}

var errForeignHandle = errors.New("handle does not belong to this host")

func (o *Host) dirPath(dir storage.Handle) (string, error) {
	oh, ok := dir.(*handle)
	if !ok {
		return "", errForeignHandle
	}
	if !oh.dir {
		return "", fmt.Errorf("%s: %w", oh.path, storage.ErrNotDirectory)
	}
	return oh.path, nil
}

// classify maps an os error onto the storage error taxonomy.
func (o *Host) classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%s: %w", path, storage.ErrNotFound)
	case os.IsPermission(err):
		return fmt.Errorf("%s: %w", path, storage.ErrPermissionDenied)
	default:
		return err
	}
}

func handleInfo(path string, fi os.FileInfo) storage.HandleInfo {
	info := storage.HandleInfo{
		Name:        fi.Name(),
		IsDirectory: fi.IsDir(),
		Handle:      newHandle(path, fi.IsDir()),
	}
	if !fi.IsDir() {
		info.Size = fi.Size()
		info.ModifiedTime = fi.ModTime()
	}
	return info
}

// AutoGrantGate grants every request. It models platforms where the user's
// directory selection itself conveys durable read/write access.
type AutoGrantGate struct{}

func (AutoGrantGate) Query(string, bool) storage.PermissionState {
	return storage.PermissionGranted
}

func (AutoGrantGate) Request(string, bool) storage.PermissionState {
	return storage.PermissionGranted
}

// PromptGate models revocable, re-promptable permission: state starts at
// prompt-required, Request consults the prompt callback, and the outcome is
// remembered per root until revoked.
type PromptGate struct {
	// Prompt is consulted on Request. A nil Prompt denies.
	Prompt func(root string, write bool) bool

	granted map[string]storage.PermissionState
}

func (g *PromptGate) Query(root string, _ bool) storage.PermissionState {
	if state, ok := g.granted[root]; ok {
		return state
	}
	return storage.PermissionPrompt
}

func (g *PromptGate) Request(root string, write bool) storage.PermissionState {
	state := storage.PermissionDenied
	if g.Prompt != nil && g.Prompt(root, write) {
		state = storage.PermissionGranted
	}
	if g.granted == nil {
		g.granted = make(map[string]storage.PermissionState)
	}
	g.granted[root] = state
	return state
}

// Revoke resets the remembered state for root to prompt-required.
func (g *PromptGate) Revoke(root string) {
	delete(g.granted, root)
}

var _ Gate = (*PromptGate)(nil)
