package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func collectEvent(t *testing.T, w *Watcher, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		return ev, ok
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()

	w, err := New(20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.WatchTree(dir); err != nil {
		t.Fatalf("WatchTree() error = %v", err)
	}

	path := filepath.Join(dir, "Regular.glyphs")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	ev, ok := collectEvent(t, w, 2*time.Second)
	if !ok {
		t.Fatal("expected an event, got none")
	}
	if ev.Path != path {
		t.Errorf("event path = %q, want %q", ev.Path, path)
	}
	if !ev.Op.Has(OpCreate) && !ev.Op.Has(OpWrite) {
		t.Errorf("event op = %v, want create or write", ev.Op)
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()

	w, err := New(100*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.WatchTree(dir); err != nil {
		t.Fatalf("WatchTree() error = %v", err)
	}

	path := filepath.Join(dir, "metrics.plist")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	ev, ok := collectEvent(t, w, 2*time.Second)
	if !ok {
		t.Fatal("expected a coalesced event, got none")
	}
	if ev.Path != path {
		t.Errorf("event path = %q, want %q", ev.Path, path)
	}

	// The burst must not produce a second event for the same path.
	select {
	case extra := <-w.Events():
		if extra.Path == path {
			t.Errorf("burst produced extra event: %+v", extra)
		}
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()

	w, err := New(20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.WatchTree(dir); err != nil {
		t.Fatalf("WatchTree() error = %v", err)
	}

	sub := filepath.Join(dir, "masters")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	// Drain the directory-creation event.
	if _, ok := collectEvent(t, w, 2*time.Second); !ok {
		t.Fatal("expected directory creation event")
	}

	// Give the watcher a moment to register the new directory.
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(sub, "Bold.glyphs")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Path == path {
				return
			}
		case <-deadline:
			t.Fatal("no event for file in newly created directory")
		}
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpCreate | OpWrite, "CREATE|WRITE"},
		{OpRemove | OpRename, "REMOVE|RENAME"},
		{0, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := New(0, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events() channel not closed after Close")
	}
}

func TestWatchAfterClose(t *testing.T) {
	w, err := New(0, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.add(os.TempDir()); err != ErrClosed {
		t.Errorf("add after close = %v, want ErrClosed", err)
	}
}
