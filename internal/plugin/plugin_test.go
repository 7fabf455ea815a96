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

func TestBaseDefaults(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewMemoryAdapter(nil)
	b := NewBase(Info{ID: "x", DisplayName: "X"}, adapter)

	assert.Equal(t, "x", b.Info().ID)
	assert.Same(t, adapter, b.Adapter())
	assert.True(t, b.CanSave())
	assert.False(t, b.RequiresPermission())
	assert.Equal(t, "/", b.DefaultPath())
	assert.True(t, b.IsReady(ctx))

	ok, err := b.Activate(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Deactivate(ctx))

	ok, err = b.ShowSetup(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryPlugin(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPlugin(nil)

	assert.Equal(t, MemoryID, p.Info().ID)
	assert.False(t, p.RequiresPermission())
	assert.True(t, p.IsReady(ctx))
	assert.Equal(t, storage.UserDataPath, p.DefaultPath())

	// The wrapped adapter is live: the default path is writable right away.
	require.NoError(t, p.Adapter().WriteFile(ctx, "/user/a.glyphs", []byte("x")))
	data, err := p.Adapter().ReadFile(ctx, "/user/a.glyphs")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestDiskPluginLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	gate := &oshost.PromptGate{Prompt: func(string, bool) bool { return true }}
	host := oshost.New(func(context.Context) (string, error) { return dir, nil }, gate)
	native := storage.NewNativeAdapter(host, oshost.NewTokenStore(kvstore.NewMemory()), nil)
	p := NewDiskPlugin(native, nil)

	assert.Equal(t, DiskID, p.Info().ID)
	assert.True(t, p.RequiresPermission())
	assert.Equal(t, "/", p.DefaultPath())
	assert.False(t, p.IsReady(ctx))
	assert.Empty(t, p.RootName())

	done, err := p.ShowSetup(ctx)
	require.NoError(t, err)
	require.True(t, done)

	assert.True(t, p.IsReady(ctx))
	assert.NotEmpty(t, p.RootName())

	usable, err := p.Activate(ctx)
	require.NoError(t, err)
	assert.True(t, usable)

	require.NoError(t, p.Forget(ctx))
	assert.False(t, p.IsReady(ctx))
}

func TestDiskPluginSetupDenied(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	gate := &oshost.PromptGate{Prompt: func(string, bool) bool { return false }}
	host := oshost.New(func(context.Context) (string, error) { return dir, nil }, gate)
	native := storage.NewNativeAdapter(host, oshost.NewTokenStore(kvstore.NewMemory()), nil)
	p := NewDiskPlugin(native, nil)

	done, err := p.ShowSetup(ctx)
	require.NoError(t, err)
	assert.False(t, done, "denied permission must leave setup incomplete")

	usable, err := p.Activate(ctx)
	require.NoError(t, err)
	assert.False(t, usable)
}

func TestDiskPluginSetupCancelled(t *testing.T) {
	ctx := context.Background()

	host := oshost.New(func(context.Context) (string, error) {
		return "", storage.ErrCancelled
	}, nil)
	native := storage.NewNativeAdapter(host, oshost.NewTokenStore(kvstore.NewMemory()), nil)
	p := NewDiskPlugin(native, nil)

	done, err := p.ShowSetup(ctx)
	require.NoError(t, err, "a cancelled chooser is not an error")
	assert.False(t, done)
	assert.False(t, p.IsReady(ctx))
}
