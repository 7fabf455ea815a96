package plugin

import (
	"go.uber.org/zap"

	"github.com/glyphdesk/glyphdesk/internal/storage"
)

// MemoryID is the registry id of the memory-backed plugin.
const MemoryID = "memory"

// MemoryPlugin exposes the sandboxed in-memory backend.
//
// It has no permission gate and is always ready, which makes it the safe
// universal fallback: it works offline and without prompting the user.
type MemoryPlugin struct {
	Base
}

// NewMemoryPlugin creates the memory plugin with a fresh adapter.
func NewMemoryPlugin(log *zap.Logger) *MemoryPlugin {
	return &MemoryPlugin{
		Base: NewBase(Info{
			ID:          MemoryID,
			DisplayName: "Workspace Storage",
			Icon:        "database",
		}, storage.NewMemoryAdapter(log)),
	}
}

var _ Plugin = (*MemoryPlugin)(nil)

// DefaultPath starts the memory backend at its user-data subtree.
func (p *MemoryPlugin) DefaultPath() string { return storage.UserDataPath }
