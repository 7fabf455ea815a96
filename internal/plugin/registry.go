package plugin

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry errors.
var (
	// ErrNotRegistered is returned when an id does not name a registered
	// plugin.
	ErrNotRegistered = errors.New("plugin is not registered")

	// ErrNilPlugin is returned when a nil plugin is registered.
	ErrNilPlugin = errors.New("plugin is nil")
)

// Registry is the catalog of available storage plugins, keyed by id, with
// one designated default.
//
// It is constructed once at process start and passed explicitly to the
// components that need backend discovery. The default id, once set, always
// refers to a currently registered plugin.
type Registry struct {
	mu        sync.RWMutex
	plugins   map[string]Plugin
	order     []string
	defaultID string
	log       *zap.Logger
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		plugins: make(map[string]Plugin),
		log:     log,
	}
}

// Register adds a plugin, replacing any existing entry with the same id.
// Replacement is logged, since silently shadowing a backend is a notable
// condition. The first plugin ever registered becomes the default.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return ErrNilPlugin
	}
	id := p.Info().ID
	if id == "" {
		return fmt.Errorf("registering plugin: %w", ErrNilPlugin)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[id]; exists {
		r.log.Warn("replacing registered storage plugin", zap.String("id", id))
	} else {
		r.order = append(r.order, id)
	}
	r.plugins[id] = p

	if r.defaultID == "" {
		r.defaultID = id
	}
	return nil
}

// SetDefault designates the default plugin. It fails with ErrNotRegistered
// and leaves the default unchanged when id is unknown.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[id]; !ok {
		return fmt.Errorf("set default %q: %w", id, ErrNotRegistered)
	}
	r.defaultID = id
	return nil
}

// Get returns the plugin registered under id.
func (r *Registry) Get(id string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[id]
	return p, ok
}

// GetAll returns all plugins in registration order.
func (r *Registry) GetAll() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.plugins[id])
	}
	return result
}

// IDs returns the registered plugin ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Has reports whether id names a registered plugin.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.plugins[id]
	return ok
}

// Default returns the default plugin.
func (r *Registry) Default() (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[r.defaultID]
	return p, ok
}

// DefaultID returns the default plugin id, or "" when nothing is
// registered.
func (r *Registry) DefaultID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.defaultID
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.plugins)
}
