// Package plugin wraps storage adapters with identity and activation
// lifecycle.
//
// A plugin is the unit the application selects a backend by: it names the
// adapter, reports whether it is ready for use, and drives the interactive
// setup flow for backends that need one. Plugins never touch file bytes;
// all I/O goes through the wrapped adapter.
package plugin

import (
	"context"

	"github.com/glyphdesk/glyphdesk/internal/storage"
)

// Info is a plugin's immutable identity.
type Info struct {
	// ID is the stable identifier the registry keys on.
	ID string

	// DisplayName is shown to the user in backend choosers.
	DisplayName string

	// Icon is a symbolic icon token resolved by the UI layer.
	Icon string
}

// Plugin wraps exactly one storage adapter and adds lifecycle semantics.
type Plugin interface {
	// Info returns the plugin's identity.
	Info() Info

	// Adapter returns the wrapped storage adapter. The adapter is created
	// at plugin construction and owned for the process lifetime.
	Adapter() storage.Adapter

	// CanSave reports whether the backend supports writes.
	CanSave() bool

	// RequiresPermission reports whether the backend gates access behind
	// user permission.
	RequiresPermission() bool

	// DefaultPath is the initial path shown when this backend is
	// activated.
	DefaultPath() string

	// IsReady reports whether the backend can be used without setup.
	IsReady(ctx context.Context) bool

	// Activate prepares the backend for use. It returns false without an
	// error when the backend is not immediately usable, signalling the
	// caller to present setup UI instead of failing outright.
	Activate(ctx context.Context) (bool, error)

	// Deactivate releases any activation-scoped state.
	Deactivate(ctx context.Context) error

	// ShowSetup drives the backend's interactive setup flow and reports
	// whether setup completed.
	ShowSetup(ctx context.Context) (bool, error)
}

// Base provides the default lifecycle behavior. Concrete plugins embed it
// and override only the methods whose behavior differs.
type Base struct {
	info    Info
	adapter storage.Adapter
}

// NewBase creates the shared plugin core.
func NewBase(info Info, adapter storage.Adapter) Base {
	return Base{info: info, adapter: adapter}
}

// Info returns the plugin's identity.
func (b Base) Info() Info { return b.info }

// Adapter returns the wrapped adapter.
func (b Base) Adapter() storage.Adapter { return b.adapter }

// CanSave defaults to true.
func (b Base) CanSave() bool { return true }

// RequiresPermission defaults to false.
func (b Base) RequiresPermission() bool { return false }

// DefaultPath defaults to the backend root.
func (b Base) DefaultPath() string { return "/" }

// IsReady defaults to true.
func (b Base) IsReady(context.Context) bool { return true }

// Activate defaults to immediately usable.
func (b Base) Activate(context.Context) (bool, error) { return true, nil }

// Deactivate is a no-op by default.
func (b Base) Deactivate(context.Context) error { return nil }

// ShowSetup defaults to completing without interaction.
func (b Base) ShowSetup(context.Context) (bool, error) { return true, nil }
