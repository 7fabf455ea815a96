// Package app wires the storage stack together and manages its lifecycle.
//
// It owns the dependency order at process start: config, logger, persisted
// state, the OS host, the adapters, the plugins, and finally the registry.
// Everything below this package takes its collaborators explicitly; app is
// the only place that knows the full graph.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/glyphdesk/glyphdesk/internal/config"
	"github.com/glyphdesk/glyphdesk/internal/kvstore"
	"github.com/glyphdesk/glyphdesk/internal/plugin"
	"github.com/glyphdesk/glyphdesk/internal/storage"
	"github.com/glyphdesk/glyphdesk/internal/storage/oshost"
)

// stateFileName holds persisted tokens inside the state directory.
const stateFileName = "state.json"

// Options configures application startup.
type Options struct {
	// ConfigPath overrides the config file location. Empty selects the
	// conventional per-user path.
	ConfigPath string

	// PickDirectory supplies the platform directory chooser for the disk
	// backend. Nil leaves the disk backend unable to select new
	// directories (restored ones still work).
	PickDirectory oshost.PickFunc

	// Gate overrides the permission model. Nil grants everything, which
	// matches desktop platforms where selection conveys access.
	Gate oshost.Gate

	// Logger overrides the config-built logger. Used by tests.
	Logger *zap.Logger
}

// App is the assembled storage stack.
type App struct {
	cfg      config.Config
	log      *zap.Logger
	ownsLog  bool
	registry *plugin.Registry
	native   *storage.NativeAdapter
	activeID string
}

// New assembles the stack: config, logger, token store, host, adapters,
// plugins, registry. A previously selected disk directory is restored but
// never prompted for.
func New(ctx context.Context, opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	ownsLog := false
	if log == nil {
		if log, err = BuildLogger(cfg.Logging); err != nil {
			return nil, err
		}
		ownsLog = true
	}

	stateDir, err := cfg.StatePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", stateDir, err)
	}
	store, err := kvstore.NewJSONFile(filepath.Join(stateDir, stateFileName))
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	host := oshost.New(opts.PickDirectory, opts.Gate)
	native := storage.NewNativeAdapter(host, oshost.NewTokenStore(store), log.Named("native"))
	if err := native.Restore(ctx); err != nil {
		// A broken token must not block startup; the disk backend just
		// starts unready.
		log.Warn("cannot restore directory token", zap.Error(err))
	}

	registry := plugin.NewRegistry(log.Named("registry"))
	if err := registry.Register(plugin.NewMemoryPlugin(log.Named("memory"))); err != nil {
		return nil, err
	}
	if err := registry.Register(plugin.NewDiskPlugin(native, log.Named("disk"))); err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		log:      log,
		ownsLog:  ownsLog,
		registry: registry,
		native:   native,
	}

	if err := registry.SetDefault(cfg.Storage.DefaultBackend); err != nil {
		log.Warn("configured default backend is unknown, keeping memory",
			zap.String("backend", cfg.Storage.DefaultBackend))
	}
	app.activeID = registry.DefaultID()

	return app, nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the process logger.
func (a *App) Logger() *zap.Logger { return a.log }

// Registry returns the plugin registry.
func (a *App) Registry() *plugin.Registry { return a.registry }

// Native returns the disk backend's adapter, for flows that need direct
// access to directory selection.
func (a *App) Native() *storage.NativeAdapter { return a.native }

// Active returns the currently activated plugin.
func (a *App) Active() plugin.Plugin {
	p, _ := a.registry.Get(a.activeID)
	return p
}

// ActiveID returns the id of the currently activated plugin.
func (a *App) ActiveID() string { return a.activeID }

// Activate switches the active backend. The previous backend is deactivated
// first. When the new backend reports it is not immediately usable, the
// switch still happens and usable is false, signalling the caller to run
// the backend's setup flow.
func (a *App) Activate(ctx context.Context, id string) (usable bool, err error) {
	next, ok := a.registry.Get(id)
	if !ok {
		return false, fmt.Errorf("activate %q: %w", id, plugin.ErrNotRegistered)
	}

	if prev, ok := a.registry.Get(a.activeID); ok && a.activeID != id {
		if err := prev.Deactivate(ctx); err != nil {
			a.log.Warn("deactivating backend failed",
				zap.String("backend", a.activeID), zap.Error(err))
		}
	}

	usable, err = next.Activate(ctx)
	if err != nil {
		return false, fmt.Errorf("activate %q: %w", id, err)
	}
	a.activeID = id

	a.log.Info("backend activated",
		zap.String("backend", id), zap.Bool("usable", usable))
	return usable, nil
}

// Adapter returns the active plugin's storage adapter.
func (a *App) Adapter() storage.Adapter {
	return a.Active().Adapter()
}

// ScanDepth returns the configured tree listing bound.
func (a *App) ScanDepth() int { return a.cfg.Storage.ScanDepth }

// Close releases application resources.
func (a *App) Close() error {
	if a.ownsLog {
		// Sync errors on closed stderr are routine at exit.
		_ = a.log.Sync()
	}
	return nil
}
