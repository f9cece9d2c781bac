package renderer

import (
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

// RendererBackend is everything the engine needs from a rendering backend:
// device objects for the resource systems and execution of sorted command
// streams for the scheduler.
type RendererBackend interface {
	commands.Backend
	metadata.DeviceAllocator

	Initialize(appName string) error
	Shutdown() error
}
