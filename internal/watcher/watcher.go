// Package watcher reports external changes to a granted local directory.
//
// When the disk backend is active, files under the selected directory can
// change behind the application's back. The watcher surfaces those changes
// as debounced events so open documents can be refreshed. Saving a font
// touches many files in a burst; per-path coalescing keeps that to one
// event per file.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a closed watcher.
var ErrClosed = errors.New("watcher is closed")

// DefaultDebounce is the coalescing window applied when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Op is a bitmask of file operations observed within one debounce window.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Has reports whether op includes o.
func (op Op) Has(o Op) bool { return op&o == o }

func (op Op) String() string {
	names := []struct {
		bit  Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if op.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Event is one coalesced change to a path.
type Event struct {
	// Path is the absolute OS path that changed.
	Path string

	// Op combines every operation seen during the debounce window.
	Op Op

	// Timestamp is when the first operation of the window was observed.
	Timestamp time.Time
}

// Watcher monitors a directory tree and emits debounced change events.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger

	events chan Event
	errs   chan error

	mu      sync.Mutex
	pending map[string]*pendingEvent
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// New creates a watcher with the given debounce window. A non-positive
// window selects DefaultDebounce. A nil logger disables logging.
func New(debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		log:      log,
		events:   make(chan Event, 64),
		errs:     make(chan error, 8),
		pending:  make(map[string]*pendingEvent),
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// WatchTree watches root and every directory below it. Directories created
// later under a watched directory are picked up automatically.
func (w *Watcher) WatchTree(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	return filepath.WalkDir(abs, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := w.add(p); addErr != nil {
			w.log.Warn("cannot watch directory", zap.String("path", p), zap.Error(addErr))
		}
		return nil
	})
}

func (w *Watcher) add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.fsw.Add(path)
}

// Events returns the debounced event channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops watching, flushes nothing, and closes both channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()

	close(w.events)
	close(w.errs)
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
				w.log.Warn("dropping watch error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}

	// New directories join the watch so their contents are covered too.
	if op.Has(OpCreate) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.add(ev.Name); err != nil && !errors.Is(err, ErrClosed) {
				w.log.Warn("cannot watch new directory",
					zap.String("path", ev.Name), zap.Error(err))
			}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if p, ok := w.pending[ev.Name]; ok {
		p.event.Op |= op
		p.timer.Reset(w.debounce)
		return
	}

	p := &pendingEvent{
		event: Event{Path: ev.Name, Op: op, Timestamp: time.Now()},
	}
	p.timer = time.AfterFunc(w.debounce, func() { w.flush(ev.Name) })
	w.pending[ev.Name] = p
}

// flush delivers the coalesced event for path. The send happens under the
// mutex so it cannot race Close closing the channel.
func (w *Watcher) flush(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pending[path]
	if !ok || w.closed {
		return
	}
	delete(w.pending, path)

	select {
	case w.events <- p.event:
	default:
		w.log.Warn("dropping change event", zap.String("path", path))
	}
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
