package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"go.uber.org/zap"

	"github.com/glyphdesk/glyphdesk/internal/storage/memfs"
)

// UserDataPath is the subtree of the memory backend reserved for user
// projects. It is created when the backing session starts and is the
// default path shown when the memory backend is activated.
const UserDataPath = "/user"

// MemoryAdapter implements Adapter over a sandboxed in-memory filesystem.
//
// The backend has no user-facing permission gate and is always ready. The
// backing session is created lazily on the first operation and reused for
// the life of the process.
type MemoryAdapter struct {
	mu      sync.Mutex
	session *memfs.Session
	log     *zap.Logger
}

// NewMemoryAdapter creates a memory adapter. The session is not created
// until the first operation. A nil logger disables logging.
func NewMemoryAdapter(log *zap.Logger) *MemoryAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryAdapter{log: log}
}

var _ Adapter = (*MemoryAdapter)(nil)

// connect returns the backing session, creating it on first use.
func (m *MemoryAdapter) connect() (*memfs.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return m.session, nil
	}

	session, err := memfs.Open()
	if err != nil {
		return nil, fmt.Errorf("opening memory session: %w", errors.Join(ErrUnavailable, err))
	}
	if err := session.MkdirAll(UserDataPath); err != nil {
		return nil, fmt.Errorf("preparing user data path: %w", errors.Join(ErrUnavailable, err))
	}

	m.log.Debug("memory storage session created")
	m.session = session
	return session, nil
}

// ScanDirectory lists the immediate children of dir.
// Missing or unreadable directories yield an empty map; per-entry stat
// failures skip the entry rather than aborting the scan.
func (m *MemoryAdapter) ScanDirectory(_ context.Context, dir string) (map[string]Entry, error) {
	entries := make(map[string]Entry)

	session, err := m.connect()
	if err != nil {
		m.log.Warn("scan skipped, session unavailable", zap.Error(err))
		return entries, nil
	}

	infos, err := session.ReadDir(CleanPath(dir))
	if err != nil {
		m.log.Warn("scan failed, returning empty listing",
			zap.String("path", dir), zap.Error(err))
		return entries, nil
	}

	for _, info := range infos {
		entry := Entry{Path: info.Path, IsDirectory: info.IsDir}
		if !info.IsDir {
			stat, err := session.Stat(info.Path)
			if err != nil {
				// Partial results beat total failure.
				continue
			}
			entry.Size = stat.Size
			entry.ModifiedTime = stat.ModTime
		}
		entries[info.Name] = entry
	}
	return entries, nil
}

// ReadFile returns the complete binary content at p.
func (m *MemoryAdapter) ReadFile(_ context.Context, p string) ([]byte, error) {
	session, err := m.connect()
	if err != nil {
		return nil, err
	}

	data, err := session.ReadFile(CleanPath(p))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, ErrNotFound)
	}
	return data, nil
}

// WriteFile fully overwrites the file at p, creating parents as needed.
func (m *MemoryAdapter) WriteFile(_ context.Context, p string, data []byte) error {
	session, err := m.connect()
	if err != nil {
		return err
	}

	p = CleanPath(p)
	if parent := path.Dir(p); parent != "/" {
		if err := session.MkdirAll(parent); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
	}
	if err := session.WriteFile(p, data); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// CreateFolder creates the directory at p and all missing parents.
func (m *MemoryAdapter) CreateFolder(_ context.Context, p string) error {
	session, err := m.connect()
	if err != nil {
		return err
	}

	if err := session.MkdirAll(CleanPath(p)); err != nil {
		return fmt.Errorf("create folder %s: %w", p, err)
	}
	return nil
}

// DeleteItem removes a file, or a directory tree when isDirectory is true.
func (m *MemoryAdapter) DeleteItem(_ context.Context, p string, isDirectory bool) error {
	session, err := m.connect()
	if err != nil {
		return err
	}

	p = CleanPath(p)
	if isDirectory {
		if !session.Exists(p) {
			return fmt.Errorf("delete %s: %w", p, ErrNotFound)
		}
		return session.RemoveAll(p)
	}
	if err := session.Remove(p); err != nil {
		return fmt.Errorf("delete %s: %w", p, ErrNotFound)
	}
	return nil
}

// FileExists reports whether p exists. Lookup failures mean non-existence.
func (m *MemoryAdapter) FileExists(_ context.Context, p string) (bool, error) {
	session, err := m.connect()
	if err != nil {
		m.log.Warn("existence check skipped, session unavailable", zap.Error(err))
		return false, nil
	}
	return session.Exists(CleanPath(p)), nil
}
