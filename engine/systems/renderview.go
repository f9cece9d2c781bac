package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima-core/engine/containers"
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

/** @brief The configuration for the render view system. */
type RenderViewSystemConfig struct {
	/** @brief The maximum number of views that can be registered with the system. */
	MaxViewCount uint32
}

type RenderViewSystem struct {
	Config *RenderViewSystemConfig
	lookup map[string]containers.Handle[metadata.RenderView]
	views  *containers.SparseArray[metadata.RenderView]
	// pass index -> view name
	passes map[uint8]string

	// subsystems
	device        metadata.DeviceAllocator
	cameraSystem  *CameraSystem
	shaderSystem  *ShaderSystem
	renderObjects *RenderObjectSystem
}

func NewRenderViewSystem(config *RenderViewSystemConfig, device metadata.DeviceAllocator, cs *CameraSystem, ss *ShaderSystem, ros *RenderObjectSystem) (*RenderViewSystem, error) {
	if config.MaxViewCount == 0 {
		err := fmt.Errorf("func NewRenderViewSystem - config.MaxViewCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if config.MaxViewCount > uint32(commands.MaxPass) {
		err := fmt.Errorf("func NewRenderViewSystem - config.MaxViewCount must be <= %d", commands.MaxPass)
		core.LogError(err.Error())
		return nil, err
	}
	return &RenderViewSystem{
		Config:        config,
		lookup:        make(map[string]containers.Handle[metadata.RenderView], config.MaxViewCount),
		views:         containers.NewSparseArrayWithCapacity[metadata.RenderView](int(config.MaxViewCount)),
		passes:        make(map[uint8]string, config.MaxViewCount),
		device:        device,
		cameraSystem:  cs,
		shaderSystem:  ss,
		renderObjects: ros,
	}, nil
}

func (rvs *RenderViewSystem) Create(config *metadata.RenderViewConfig) error {
	if config == nil {
		return fmt.Errorf("render_view_system_create requires a pointer to a valid config")
	}
	if config.Name == "" {
		return fmt.Errorf("render_view_system_create: name is required")
	}
	// Make sure there is not already an entry with this name already registered.
	if _, ok := rvs.lookup[config.Name]; ok {
		return fmt.Errorf("render_view_system_create - A view named '%s' already exists. A new one will not be created", config.Name)
	}
	if uint32(rvs.views.Len()) >= rvs.Config.MaxViewCount {
		return fmt.Errorf("render_view_system_create - %w. Change system config to account for more", core.ErrCapacityExceeded)
	}
	if config.PassIndex >= commands.MaxPass {
		return fmt.Errorf("render_view_system_create - pass index %d out of range", config.PassIndex)
	}
	if other, ok := rvs.passes[config.PassIndex]; ok {
		return fmt.Errorf("render_view_system_create - pass %d is already used by view '%s'", config.PassIndex, other)
	}
	if config.Width == 0 || config.Height == 0 {
		return fmt.Errorf("render_view_system_create - view '%s' has an empty render area", config.Name)
	}

	view := metadata.RenderView{
		Name:           config.Name,
		RenderViewType: config.RenderViewType,
		PassIndex:      config.PassIndex,
		Layer:          config.Layer,
		ViewportID:     config.ViewportID,
		ClearColour:    config.ClearColour,
		Mask:           config.Mask,
		Fullscreen:     config.Fullscreen,
	}
	switch config.RenderViewType {
	case metadata.RENDERER_VIEW_KNOWN_TYPE_WORLD:
	case metadata.RENDERER_VIEW_KNOWN_TYPE_SKYBOX:
		view.Layer = metadata.ViewLayerBackground
	case metadata.RENDERER_VIEW_KNOWN_TYPE_UI:
		view.Layer = metadata.ViewLayerOverlay
	default:
		return fmt.Errorf("not a valid render view type")
	}

	var err error
	view.Framebuffer, err = rvs.device.CreateFramebuffer(config.Name, config.Width, config.Height)
	if err != nil {
		core.LogError("failed to create framebuffer for view '%s'", config.Name)
		return err
	}
	view.Viewport = fullViewport(config.Width, config.Height)
	view.Camera, err = rvs.cameraSystem.AcquireRef(config.CameraName)
	if err != nil {
		if derr := rvs.device.DestroyFramebuffer(view.Framebuffer); derr != nil {
			core.LogError(derr.Error())
		}
		return err
	}

	rvs.lookup[config.Name] = rvs.views.Add(view)
	rvs.passes[config.PassIndex] = config.Name
	return nil
}

// Destroy removes the view called name and frees its framebuffer and camera.
func (rvs *RenderViewSystem) Destroy(name string) error {
	h, ok := rvs.lookup[name]
	if !ok {
		return fmt.Errorf("view '%s': %w", name, core.ErrUnknownResource)
	}
	view, err := rvs.views.Get(h)
	if err != nil {
		return err
	}
	removed := *view
	if err := rvs.views.Remove(h); err != nil {
		return err
	}
	delete(rvs.lookup, name)
	delete(rvs.passes, removed.PassIndex)
	return rvs.destroy(&removed)
}

func (rvs *RenderViewSystem) destroy(view *metadata.RenderView) error {
	if _, err := view.Camera.Release(); err != nil {
		core.LogWarn("view '%s' camera release: %s", view.Name, err)
	}
	return rvs.device.DestroyFramebuffer(view.Framebuffer)
}

func (rvs *RenderViewSystem) Shutdown() error {
	for _, view := range rvs.views.All() {
		if err := rvs.destroy(view); err != nil {
			core.LogError("failed to destroy view '%s': %s", view.Name, err)
		}
	}
	rvs.views.Clear()
	clear(rvs.lookup)
	clear(rvs.passes)
	return nil
}

/**
 * @brief Called when the owner of the views (i.e. the window) is resized.
 * Framebuffers are recreated at the new size.
 */
func (rvs *RenderViewSystem) OnResize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("render views cannot be resized to %dx%d", width, height)
	}
	for _, view := range rvs.views.All() {
		if uint32(view.Viewport.Width) == width && uint32(view.Viewport.Height) == height {
			continue
		}
		framebuffer, err := rvs.device.CreateFramebuffer(view.Name, width, height)
		if err != nil {
			return err
		}
		if err := rvs.device.DestroyFramebuffer(view.Framebuffer); err != nil {
			core.LogWarn("view '%s' old framebuffer: %s", view.Name, err)
		}
		view.Framebuffer = framebuffer
		view.Viewport = fullViewport(width, height)
	}
	return nil
}

/**
 * @brief Obtains a pointer to a view with the given name.
 */
func (rvs *RenderViewSystem) Get(name string) (*metadata.RenderView, error) {
	h, ok := rvs.lookup[name]
	if !ok {
		return nil, fmt.Errorf("view '%s': %w", name, core.ErrUnknownResource)
	}
	return rvs.views.Get(h)
}

func (rvs *RenderViewSystem) Len() int {
	return rvs.views.Len()
}

// BuildCommands records every view into frame. The first failure marks the
// frame as failed and is returned.
func (rvs *RenderViewSystem) BuildCommands(frame *commands.Frame) error {
	for _, view := range rvs.views.All() {
		if err := rvs.buildView(frame, view); err != nil {
			err = fmt.Errorf("view '%s': %w", view.Name, err)
			frame.Fail(err)
			return err
		}
	}
	return nil
}

func (rvs *RenderViewSystem) buildView(frame *commands.Frame, view *metadata.RenderView) error {
	camera, err := view.Camera.Get()
	if err != nil {
		return err
	}

	key, err := commands.BeginPassKey(view.PassIndex)
	if err != nil {
		return err
	}
	err = frame.Record(key, commands.BeginPass{
		Pass:        view.PassIndex,
		Name:        view.Name,
		Framebuffer: view.Framebuffer,
		Width:       uint32(view.Viewport.Width),
		Height:      uint32(view.Viewport.Height),
		ClearColour: view.ClearColour,
		ClearDepth:  view.RenderViewType == metadata.RENDERER_VIEW_KNOWN_TYPE_WORLD,
	})
	if err != nil {
		return err
	}

	if key, err = commands.StateKey(view.PassIndex, view.Layer, commands.KindSetViewport, view.ViewportID); err != nil {
		return err
	}
	if err := frame.Record(key, commands.SetViewport{ViewportID: view.ViewportID, Viewport: view.Viewport}); err != nil {
		return err
	}

	for _, object := range rvs.renderObjects.All() {
		if !object.Visible || object.ViewMask&view.Mask == 0 {
			continue
		}
		geometry, material, err := rvs.renderObjects.resolve(object)
		if err != nil {
			return fmt.Errorf("render object '%s': %w", object.Name, err)
		}
		shader, err := rvs.shaderSystem.Get(material.Shader)
		if err != nil {
			return fmt.Errorf("render object '%s': %w", object.Name, err)
		}
		depth := camera.LinearDepth(object.Position.Add(geometry.Center))
		key, err := commands.DrawKey(view.PassIndex, view.Layer, ProgramID(material.Shader), MaterialID(object.Material),
			depth, material.Translucency, view.ViewportID, view.Fullscreen)
		if err != nil {
			return err
		}
		err = frame.Record(key, commands.DrawMesh{
			Program:       ProgramID(material.Shader),
			Pipeline:      shader.Pipeline,
			Material:      MaterialID(object.Material),
			DescriptorSet: material.DescriptorSet,
			VertexBuffer:  geometry.VertexBuffer,
			IndexBuffer:   geometry.IndexBuffer,
			VertexCount:   geometry.VertexCount,
			IndexCount:    geometry.IndexCount,
		})
		if err != nil {
			return fmt.Errorf("render object '%s': %w", object.Name, err)
		}
	}

	if key, err = commands.EndPassKey(view.PassIndex); err != nil {
		return err
	}
	return frame.Record(key, commands.EndPass{Pass: view.PassIndex})
}

func fullViewport(width, height uint32) metadata.Viewport {
	return metadata.Viewport{
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}
