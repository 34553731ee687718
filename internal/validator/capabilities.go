package validator

import (
	"github.com/chatia/deploykit/internal/config"
)

// Capabilities records which optional parts of the checklist may run. Checks branch on
// these flags instead of discovering a missing collaborator halfway through.
type Capabilities struct {
	// TableInspection lets the database check connect with the backend's credentials and
	// look for the critical tables.
	TableInspection bool
	// Realtime lets the Socket.IO check open a websocket session.
	Realtime bool
}

// DetectCapabilities reads the capability switches of cfg.
func DetectCapabilities(cfg *config.Config) Capabilities {
	return Capabilities{
		TableInspection: cfg.Capabilities.TableInspection,
		Realtime:        cfg.Capabilities.Realtime,
	}
}
