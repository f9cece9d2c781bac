package engine

import (
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-core/engine/systems"
)

type ApplicationConfig struct {
	// Starting width of the render targets.
	StartWidth uint32
	// Starting height of the render targets.
	StartHeight uint32
	// The application name handed to the renderer backend.
	Name string
	// Views created at initialization. A single world view is created when empty.
	RenderViewConfigs []*metadata.RenderViewConfig
	// Source of texture pixels. Without one only the default textures exist.
	TextureLoader systems.TextureLoader
	// Textures loaded on the job system during initialization.
	PreloadTextures []string
}

// DefaultRenderViewConfig is the world view used when an application does
// not configure any.
func DefaultRenderViewConfig(width, height uint32) *metadata.RenderViewConfig {
	return &metadata.RenderViewConfig{
		Name:           "world",
		RenderViewType: metadata.RENDERER_VIEW_KNOWN_TYPE_WORLD,
		PassIndex:      0,
		Layer:          metadata.ViewLayerWorld,
		Width:          width,
		Height:         height,
		Mask:           ^uint32(0),
	}
}
