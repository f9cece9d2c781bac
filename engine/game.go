package engine

import (
	"github.com/spaghettifunk/anima-core/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnInitialize runs.
	SystemManager *systems.SystemManager
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render runs after Update, right before the frame is recorded. The scene
// can still be changed.
type Render func(frameNumber uint64, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
