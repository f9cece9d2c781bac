package systems

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

type SystemManager struct {
	cameraSystem       *CameraSystem
	geometrySystem     *GeometrySystem
	jobSystem          *JobSystem
	materialSystem     *MaterialSystem
	renderObjectSystem *RenderObjectSystem
	renderViewSystem   *RenderViewSystem
	shaderSystem       *ShaderSystem
	textureSystem      *TextureSystem
}

// NewSystemManager builds every system sized from cfg. Device objects are
// created through device. loader may be nil, in which case only the default
// textures exist.
func NewSystemManager(cfg core.SystemsConfig, device metadata.DeviceAllocator, loader TextureLoader) (*SystemManager, error) {
	if device == nil {
		return nil, fmt.Errorf("func NewSystemManager - a device is required")
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: cfg.MaxCameraCount,
	})
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: cfg.MaxTextureCount,
		Loader:          loader,
	}, device)
	if err != nil {
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: cfg.MaxShaderCount,
	}, device)
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: cfg.MaxMaterialCount,
	}, ssys, ts, device)
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: cfg.MaxGeometryCount,
	}, device)
	if err != nil {
		return nil, err
	}
	ros, err := NewRenderObjectSystem(&RenderObjectSystemConfig{
		MaxRenderObjects: cfg.MaxRenderObjects,
	}, gs, ms)
	if err != nil {
		return nil, err
	}
	rvs, err := NewRenderViewSystem(&RenderViewSystemConfig{
		MaxViewCount: cfg.MaxViewCount,
	}, device, cs, ssys, ros)
	if err != nil {
		return nil, err
	}
	js, err := NewJobSystem(int(cfg.JobWorkers), int(cfg.JobWorkers)*4)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		jobSystem:          js,
		cameraSystem:       cs,
		textureSystem:      ts,
		shaderSystem:       ssys,
		materialSystem:     ms,
		geometrySystem:     gs,
		renderObjectSystem: ros,
		renderViewSystem:   rvs,
	}, nil
}

// Initialize creates the defaults of every system. Later systems depend on
// the defaults of earlier ones.
func (sm *SystemManager) Initialize() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"camera", sm.cameraSystem.Initialize},
		{"texture", sm.textureSystem.Initialize},
		{"shader", sm.shaderSystem.Initialize},
		{"material", sm.materialSystem.Initialize},
		{"geometry", sm.geometrySystem.Initialize},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			core.LogError("failed to initialize %s system: %s", step.name, err)
			return fmt.Errorf("%s system: %w", step.name, err)
		}
	}
	return nil
}

// DrawFrame records every view plus a present into a new frame and submits
// it. An aborted frame is logged; the scheduler is ready for the next one.
func (sm *SystemManager) DrawFrame(s *commands.Scheduler) (commands.FrameReport, error) {
	frame, err := s.BeginFrame()
	if err != nil {
		return commands.FrameReport{}, err
	}
	if err := sm.renderViewSystem.BuildCommands(frame); err != nil {
		core.LogDebug("frame %d failed while recording: %s", frame.Number, err)
	}
	if err := frame.Record(commands.PresentKey(), commands.Present{}); err != nil && frame.Err() == nil {
		frame.Fail(err)
	}
	report, err := s.Submit(frame)
	if errors.Is(err, core.ErrFrameAborted) {
		core.LogWarn("frame %d aborted: %s", report.Number, err)
	}
	return report, err
}

func (sm *SystemManager) Shutdown() error {
	steps := []struct {
		name     string
		shutdown func() error
	}{
		{"render view", sm.renderViewSystem.Shutdown},
		{"render object", sm.renderObjectSystem.Shutdown},
		{"geometry", sm.geometrySystem.Shutdown},
		{"material", sm.materialSystem.Shutdown},
		{"shader", sm.shaderSystem.Shutdown},
		{"texture", sm.textureSystem.Shutdown},
		{"camera", sm.cameraSystem.Shutdown},
		{"job", sm.jobSystem.Shutdown},
	}
	var errs []error
	for _, step := range steps {
		if err := step.shutdown(); err != nil {
			core.LogError("failed to shutdown %s system: %s", step.name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (sm *SystemManager) JobSystem() *JobSystem                   { return sm.jobSystem }
func (sm *SystemManager) CameraSystem() *CameraSystem             { return sm.cameraSystem }
func (sm *SystemManager) TextureSystem() *TextureSystem           { return sm.textureSystem }
func (sm *SystemManager) ShaderSystem() *ShaderSystem             { return sm.shaderSystem }
func (sm *SystemManager) MaterialSystem() *MaterialSystem         { return sm.materialSystem }
func (sm *SystemManager) GeometrySystem() *GeometrySystem         { return sm.geometrySystem }
func (sm *SystemManager) RenderObjectSystem() *RenderObjectSystem { return sm.renderObjectSystem }
func (sm *SystemManager) RenderViewSystem() *RenderViewSystem     { return sm.renderViewSystem }
