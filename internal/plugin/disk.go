package plugin

import (
	"context"

	"go.uber.org/zap"

	"github.com/glyphdesk/glyphdesk/internal/storage"
)

// DiskID is the registry id of the native-directory plugin.
const DiskID = "disk"

// DiskPlugin exposes a user-granted local directory through the native
// adapter. It is ready only once a directory handle exists, and usable only
// while permission is granted.
type DiskPlugin struct {
	Base
	native *storage.NativeAdapter
	log    *zap.Logger
}

// NewDiskPlugin creates the disk plugin around a native adapter.
func NewDiskPlugin(native *storage.NativeAdapter, log *zap.Logger) *DiskPlugin {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiskPlugin{
		Base: NewBase(Info{
			ID:          DiskID,
			DisplayName: "Local Folder",
			Icon:        "folder",
		}, native),
		native: native,
		log:    log,
	}
}

var _ Plugin = (*DiskPlugin)(nil)

// RequiresPermission is true: access is granted per directory and revocable.
func (p *DiskPlugin) RequiresPermission() bool { return true }

// IsReady reports whether a directory handle exists.
func (p *DiskPlugin) IsReady(context.Context) bool {
	return p.native.HasRoot()
}

// Activate checks readiness, then permission. It returns false without an
// error when either is unmet so the caller can present setup UI.
func (p *DiskPlugin) Activate(ctx context.Context) (bool, error) {
	if !p.native.HasRoot() {
		p.log.Debug("disk plugin not ready: no directory selected")
		return false, nil
	}
	if perm := p.native.CheckPermission(ctx); perm != storage.PermissionGranted {
		p.log.Debug("disk plugin not ready: permission unmet",
			zap.Stringer("permission", perm))
		return false, nil
	}
	return true, nil
}

// ShowSetup drives the directory-selection flow. When a directory handle
// already exists it only re-requests permission; otherwise it opens the
// platform chooser.
func (p *DiskPlugin) ShowSetup(ctx context.Context) (bool, error) {
	if p.native.HasRoot() {
		if p.native.RequestPermission(ctx) == storage.PermissionGranted {
			return true, nil
		}
		// Existing handle is unusable; fall through to picking anew.
	}

	ok, err := p.native.SelectDirectory(ctx)
	if err != nil || !ok {
		return false, err
	}
	return p.native.CheckPermission(ctx) == storage.PermissionGranted, nil
}

// RootName returns the display name of the selected directory, or "".
func (p *DiskPlugin) RootName() string { return p.native.RootName() }

// Forget revokes the directory association.
func (p *DiskPlugin) Forget(ctx context.Context) error {
	return p.native.Clear(ctx)
}
