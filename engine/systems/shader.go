package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. At most commands.MaxProgram+1. */
	MaxShaderCount uint32
}

// ShaderSystem owns shader programs. Shaders are persistent: they are
// created once, shared by name and only destroyed at shutdown. The index of
// a shader's ID is the program id used in sort keys.
type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->id
	lookup   map[string]resources.ID[metadata.Shader]
	registry *resources.Registry[metadata.Shader]
	device   metadata.DeviceAllocator
}

func NewShaderSystem(config *ShaderSystemConfig, device metadata.DeviceAllocator) (*ShaderSystem, error) {
	if config.MaxShaderCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	if config.MaxShaderCount > uint32(commands.MaxProgram)+1 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be at most %d", uint32(commands.MaxProgram)+1)
		core.LogError(err.Error())
		return nil, err
	}

	shaderSystem := &ShaderSystem{
		Config: config,
		lookup: make(map[string]resources.ID[metadata.Shader]),
		device: device,
	}
	registry, err := resources.NewRegistry[metadata.Shader](
		resources.WithCapacity[metadata.Shader](config.MaxShaderCount),
		resources.WithReleaseFunc[metadata.Shader](shaderSystem.destroy),
	)
	if err != nil {
		return nil, err
	}
	shaderSystem.registry = registry
	return shaderSystem, nil
}

// Initialize creates the builtin shaders.
func (shaderSystem *ShaderSystem) Initialize() error {
	for _, name := range []string{
		metadata.BUILTIN_SHADER_NAME_WORLD,
		metadata.BUILTIN_SHADER_NAME_SKYBOX,
		metadata.BUILTIN_SHADER_NAME_UI,
	} {
		if _, err := shaderSystem.Create(metadata.Shader{
			Name:       name,
			Stages:     []metadata.ShaderStage{metadata.ShaderStageVertex, metadata.ShaderStageFragment},
			StageFiles: []string{"shaders/" + name + ".vert.spv", "shaders/" + name + ".frag.spv"},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (shaderSystem *ShaderSystem) Shutdown() error {
	shaderSystem.registry.Clear()
	return nil
}

// Create builds the pipeline for shader and registers it under its name.
func (shaderSystem *ShaderSystem) Create(shader metadata.Shader) (resources.ID[metadata.Shader], error) {
	if shader.Name == "" {
		return resources.InvalidID[metadata.Shader](), fmt.Errorf("shader must have a name")
	}
	if _, ok := shaderSystem.lookup[shader.Name]; ok {
		return resources.InvalidID[metadata.Shader](), fmt.Errorf("shader '%s' already exists", shader.Name)
	}
	if len(shader.Stages) != len(shader.StageFiles) {
		return resources.InvalidID[metadata.Shader](), fmt.Errorf("shader '%s' has %d stages but %d stage files", shader.Name, len(shader.Stages), len(shader.StageFiles))
	}

	pipeline, err := shaderSystem.device.CreatePipeline(&shader)
	if err != nil {
		err = fmt.Errorf("failed to create pipeline for shader '%s': %w", shader.Name, err)
		core.LogError(err.Error())
		return resources.InvalidID[metadata.Shader](), err
	}
	shader.Pipeline = pipeline

	id, err := shaderSystem.registry.EmplacePersistent(shader)
	if err != nil {
		if derr := shaderSystem.device.DestroyPipeline(pipeline); derr != nil {
			core.LogError("failed to destroy pipeline for shader '%s': %s", shader.Name, derr)
		}
		return resources.InvalidID[metadata.Shader](), fmt.Errorf("shader '%s': %w", shader.Name, err)
	}
	shaderSystem.lookup[shader.Name] = id
	core.LogDebug("shader '%s' created with program id %d", shader.Name, id.Index())
	return id, nil
}

// Acquire takes a reference on the shader called name.
func (shaderSystem *ShaderSystem) Acquire(name string) (resources.ID[metadata.Shader], error) {
	id, ok := shaderSystem.lookup[name]
	if !ok {
		return resources.InvalidID[metadata.Shader](), fmt.Errorf("shader '%s': %w", name, core.ErrUnknownResource)
	}
	if _, err := shaderSystem.registry.IncrementRef(id); err != nil {
		return resources.InvalidID[metadata.Shader](), err
	}
	return id, nil
}

func (shaderSystem *ShaderSystem) Release(id resources.ID[metadata.Shader]) error {
	_, err := shaderSystem.registry.DecrementRef(id)
	return err
}

func (shaderSystem *ShaderSystem) GetID(name string) (resources.ID[metadata.Shader], bool) {
	id, ok := shaderSystem.lookup[name]
	return id, ok
}

func (shaderSystem *ShaderSystem) Get(id resources.ID[metadata.Shader]) (*metadata.Shader, error) {
	return shaderSystem.registry.Get(id)
}

// ProgramID is the sort key program field for id.
func ProgramID(id resources.ID[metadata.Shader]) uint16 {
	return uint16(id.Index())
}

func (shaderSystem *ShaderSystem) Len() int {
	return shaderSystem.registry.Len()
}

func (shaderSystem *ShaderSystem) destroy(id resources.ID[metadata.Shader], shader metadata.Shader) {
	if err := shaderSystem.device.DestroyPipeline(shader.Pipeline); err != nil {
		core.LogError("failed to destroy pipeline for shader '%s': %s", shader.Name, err)
	}
	if current, ok := shaderSystem.lookup[shader.Name]; ok && current == id {
		delete(shaderSystem.lookup, shader.Name)
	}
}
