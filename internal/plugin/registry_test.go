package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphdesk/glyphdesk/internal/kvstore"
	"github.com/glyphdesk/glyphdesk/internal/storage"
	"github.com/glyphdesk/glyphdesk/internal/storage/oshost"
)

type stubPlugin struct {
	Base
}

func newStubPlugin(id string) *stubPlugin {
	return &stubPlugin{Base: NewBase(Info{ID: id, DisplayName: id}, storage.NewMemoryAdapter(nil))}
}

func TestRegisterFirstBecomesDefault(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.Register(newStubPlugin("a")))
	require.NoError(t, r.Register(newStubPlugin("b")))

	assert.Equal(t, "a", r.DefaultID())
	assert.Equal(t, []string{"a", "b"}, r.IDs())
	assert.Equal(t, 2, r.Count())
}

func TestSetDefault(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(newStubPlugin("a")))
	require.NoError(t, r.Register(newStubPlugin("b")))

	require.NoError(t, r.SetDefault("b"))
	assert.Equal(t, "b", r.DefaultID())

	// Unknown id fails and leaves the default unchanged.
	err := r.SetDefault("missing")
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Equal(t, "b", r.DefaultID())

	p, ok := r.Default()
	require.True(t, ok)
	assert.Equal(t, "b", p.Info().ID)
}

func TestRegisterReplaceKeepsOrder(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(newStubPlugin("a")))
	require.NoError(t, r.Register(newStubPlugin("b")))

	replacement := newStubPlugin("a")
	require.NoError(t, r.Register(replacement))

	assert.Equal(t, []string{"a", "b"}, r.IDs())
	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.Equal(t, "a", r.DefaultID())
}

func TestRegisterNil(t *testing.T) {
	r := NewRegistry(nil)
	assert.ErrorIs(t, r.Register(nil), ErrNilPlugin)
}

func TestLookups(t *testing.T) {
	r := NewRegistry(nil)

	_, ok := r.Get("a")
	assert.False(t, ok)
	assert.False(t, r.Has("a"))
	assert.Empty(t, r.DefaultID())
	_, ok = r.Default()
	assert.False(t, ok)

	require.NoError(t, r.Register(newStubPlugin("a")))
	assert.True(t, r.Has("a"))

	all := r.GetAll()
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].Info().ID)
}

// TestStartupScenario walks the documented process-start flow: memory and
// disk are registered, memory is the default, and the disk plugin becomes
// ready only after its setup flow selects a directory.
func TestStartupScenario(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	host := oshost.New(func(context.Context) (string, error) { return dir, nil }, nil)
	native := storage.NewNativeAdapter(host, oshost.NewTokenStore(kvstore.NewMemory()), nil)

	r := NewRegistry(nil)
	require.NoError(t, r.Register(NewMemoryPlugin(nil)))
	require.NoError(t, r.Register(NewDiskPlugin(native, nil)))
	require.NoError(t, r.SetDefault(MemoryID))

	assert.Equal(t, MemoryID, r.DefaultID())

	disk, ok := r.Get(DiskID)
	require.True(t, ok)
	assert.False(t, disk.IsReady(ctx), "disk must not be ready before a directory is selected")

	usable, err := disk.Activate(ctx)
	require.NoError(t, err)
	assert.False(t, usable, "activation before setup must signal setup UI, not fail")

	done, err := disk.ShowSetup(ctx)
	require.NoError(t, err)
	require.True(t, done)

	assert.True(t, disk.IsReady(ctx))
	usable, err = disk.Activate(ctx)
	require.NoError(t, err)
	assert.True(t, usable)

	assert.Equal(t, "/", disk.DefaultPath())
	mem, ok := r.Get(MemoryID)
	require.True(t, ok)
	assert.Equal(t, "/user", mem.DefaultPath())
}
