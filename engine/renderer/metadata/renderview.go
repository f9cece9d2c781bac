package metadata

import (
	"github.com/spaghettifunk/anima-core/engine/math"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

type RenderViewKnownType int

const (
	RENDERER_VIEW_KNOWN_TYPE_WORLD RenderViewKnownType = iota
	RENDERER_VIEW_KNOWN_TYPE_SKYBOX
	RENDERER_VIEW_KNOWN_TYPE_UI
)

func (t RenderViewKnownType) String() string {
	switch t {
	case RENDERER_VIEW_KNOWN_TYPE_WORLD:
		return "world"
	case RENDERER_VIEW_KNOWN_TYPE_SKYBOX:
		return "skybox"
	case RENDERER_VIEW_KNOWN_TYPE_UI:
		return "ui"
	}
	return "unknown"
}

// ViewLayer separates world content from overlays that must draw after it
// regardless of material.
type ViewLayer uint8

const (
	ViewLayerBackground ViewLayer = iota
	ViewLayerWorld
	ViewLayerOverlay
)

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

type RenderViewConfig struct {
	Name           string
	RenderViewType RenderViewKnownType
	// Logical pass the view renders in. Lower passes execute first.
	PassIndex   uint8
	Layer       ViewLayer
	ViewportID  uint8
	Width       uint32
	Height      uint32
	ClearColour math.Vec4
	// Bit set on render objects that should be drawn by this view.
	Mask       uint32
	Fullscreen bool
	// Camera the view renders from; empty uses the default camera.
	CameraName string
}

type RenderView struct {
	Name           string
	RenderViewType RenderViewKnownType
	PassIndex      uint8
	Layer          ViewLayer
	ViewportID     uint8
	Viewport       Viewport
	ClearColour    math.Vec4
	Mask           uint32
	Fullscreen     bool
	Framebuffer    FramebufferHandle
	Camera         *resources.Ref[Camera]
}
