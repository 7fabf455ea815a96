// Package memfs implements the sandboxed virtual filesystem session that
// backs the memory storage adapter.
//
// A Session holds the entire tree in process memory. It is the binary
// source of truth for already-loaded font objects, so content is stored and
// returned as raw bytes with no encoding applied. Sessions are safe for
// concurrent use.
package memfs

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// Errors returned by session operations.
var (
	ErrNotExist = errors.New("file does not exist")
	ErrIsDir    = errors.New("is a directory")
	ErrNotDir   = errors.New("not a directory")
	ErrNotEmpty = errors.New("directory not empty")
)

// Info describes one item in the session.
type Info struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Session is an in-memory file tree rooted at "/".
type Session struct {
	mu    sync.RWMutex
	files map[string]*file
	dirs  map[string]bool
}

type file struct {
	data    []byte
	modTime time.Time
}

// Open creates a new empty session with the root directory in place.
func Open() (*Session, error) {
	return &Session{
		files: make(map[string]*file),
		dirs:  map[string]bool{"/": true},
	}, nil
}

// ReadFile returns a copy of the file content at p.
func (s *Session) ReadFile(p string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p = cleanPath(p)
	f, ok := s.files[p]
	if !ok {
		if s.dirs[p] {
			return nil, fmt.Errorf("read %s: %w", p, ErrIsDir)
		}
		return nil, fmt.Errorf("read %s: %w", p, ErrNotExist)
	}

	// Copy so callers cannot mutate stored bytes.
	data := make([]byte, len(f.data))
	copy(data, f.data)
	return data, nil
}

// WriteFile replaces the content of the file at p, creating it if absent.
// The parent directory must exist.
func (s *Session) WriteFile(p string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = cleanPath(p)
	if s.dirs[p] {
		return fmt.Errorf("write %s: %w", p, ErrIsDir)
	}
	parent := path.Dir(p)
	if !s.dirs[parent] {
		return fmt.Errorf("write %s: parent: %w", p, ErrNotExist)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	s.files[p] = &file{data: stored, modTime: time.Now()}
	return nil
}

// Stat returns information about the item at p.
func (s *Session) Stat(p string) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p = cleanPath(p)
	if f, ok := s.files[p]; ok {
		return Info{
			Path:    p,
			Name:    path.Base(p),
			Size:    int64(len(f.data)),
			ModTime: f.modTime,
			IsDir:   false,
		}, nil
	}
	if s.dirs[p] {
		return Info{Path: p, Name: path.Base(p), IsDir: true}, nil
	}
	return Info{}, fmt.Errorf("stat %s: %w", p, ErrNotExist)
}

// ReadDir lists the immediate children of the directory at p, sorted by name.
func (s *Session) ReadDir(p string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p = cleanPath(p)
	if !s.dirs[p] {
		if _, ok := s.files[p]; ok {
			return nil, fmt.Errorf("readdir %s: %w", p, ErrNotDir)
		}
		return nil, fmt.Errorf("readdir %s: %w", p, ErrNotExist)
	}

	prefix := p
	if prefix != "/" {
		prefix += "/"
	}

	var infos []Info
	for fp, f := range s.files {
		name, ok := directChild(prefix, fp)
		if !ok {
			continue
		}
		infos = append(infos, Info{
			Path:    fp,
			Name:    name,
			Size:    int64(len(f.data)),
			ModTime: f.modTime,
			IsDir:   false,
		})
	}
	for dp := range s.dirs {
		name, ok := directChild(prefix, dp)
		if !ok {
			continue
		}
		infos = append(infos, Info{Path: dp, Name: name, IsDir: true})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// MkdirAll creates the directory at p and all missing parents.
// It succeeds if the directory already exists.
func (s *Session) MkdirAll(p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = cleanPath(p)
	if _, ok := s.files[p]; ok {
		return fmt.Errorf("mkdir %s: %w", p, ErrNotDir)
	}

	current := ""
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part == "" {
			continue
		}
		current += "/" + part
		if _, ok := s.files[current]; ok {
			return fmt.Errorf("mkdir %s: %w", current, ErrNotDir)
		}
		s.dirs[current] = true
	}
	return nil
}

// Remove removes a file or an empty directory.
func (s *Session) Remove(p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = cleanPath(p)
	if _, ok := s.files[p]; ok {
		delete(s.files, p)
		return nil
	}
	if !s.dirs[p] {
		return fmt.Errorf("remove %s: %w", p, ErrNotExist)
	}

	prefix := p
	if prefix != "/" {
		prefix += "/"
	}
	for fp := range s.files {
		if strings.HasPrefix(fp, prefix) {
			return fmt.Errorf("remove %s: %w", p, ErrNotEmpty)
		}
	}
	for dp := range s.dirs {
		if dp != p && strings.HasPrefix(dp, prefix) {
			return fmt.Errorf("remove %s: %w", p, ErrNotEmpty)
		}
	}

	delete(s.dirs, p)
	return nil
}

// RemoveAll removes p and all its contents.
// It succeeds if p does not exist.
func (s *Session) RemoveAll(p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = cleanPath(p)
	if _, ok := s.files[p]; ok {
		delete(s.files, p)
		return nil
	}
	if !s.dirs[p] {
		return nil
	}

	prefix := p
	if prefix != "/" {
		prefix += "/"
	}
	for fp := range s.files {
		if strings.HasPrefix(fp, prefix) {
			delete(s.files, fp)
		}
	}
	for dp := range s.dirs {
		if dp == p || strings.HasPrefix(dp, prefix) {
			delete(s.dirs, dp)
		}
	}
	return nil
}

// Exists reports whether p exists.
func (s *Session) Exists(p string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p = cleanPath(p)
	_, isFile := s.files[p]
	return isFile || s.dirs[p]
}

// IsDir reports whether p is a directory.
func (s *Session) IsDir(p string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dirs[cleanPath(p)]
}

// directChild returns the child name when target is an immediate child of
// the directory identified by prefix (which ends with "/").
func directChild(prefix, target string) (string, bool) {
	if !strings.HasPrefix(target, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(target, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func cleanPath(p string) string {
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
