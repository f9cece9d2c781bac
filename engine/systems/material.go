package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/math"
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

type MaterialSystemConfig struct {
	/** @brief The maximum number of loaded materials. At most commands.MaxMaterial+1. */
	MaxMaterialCount uint32
}

// MaterialSystem owns materials. A material holds a reference on its
// diffuse texture and a descriptor set binding it to its shader's
// pipeline; both are released when the material is.
type MaterialSystem struct {
	Config   *MaterialSystemConfig
	lookup   map[string]resources.ID[metadata.Material]
	registry *resources.Registry[metadata.Material]

	defaultMaterial resources.ID[metadata.Material]

	shaderSystem  *ShaderSystem
	textureSystem *TextureSystem
	device        metadata.DeviceAllocator
}

func NewMaterialSystem(config *MaterialSystemConfig, ss *ShaderSystem, ts *TextureSystem, device metadata.DeviceAllocator) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if config.MaxMaterialCount > uint32(commands.MaxMaterial)+1 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be at most %d", uint32(commands.MaxMaterial)+1)
		core.LogError(err.Error())
		return nil, err
	}
	ms := &MaterialSystem{
		Config:          config,
		lookup:          make(map[string]resources.ID[metadata.Material]),
		defaultMaterial: resources.InvalidID[metadata.Material](),
		shaderSystem:    ss,
		textureSystem:   ts,
		device:          device,
	}
	registry, err := resources.NewRegistry[metadata.Material](
		resources.WithCapacity[metadata.Material](config.MaxMaterialCount),
		resources.WithReleaseFunc[metadata.Material](ms.destroy),
	)
	if err != nil {
		return nil, err
	}
	ms.registry = registry
	return ms, nil
}

// Initialize creates the persistent default material: world shader, default
// diffuse texture, white.
func (ms *MaterialSystem) Initialize() error {
	id, err := ms.create(metadata.MaterialConfig{
		Name:          metadata.DEFAULT_MATERIAL_NAME,
		ShaderName:    metadata.BUILTIN_SHADER_NAME_WORLD,
		DiffuseMap:    metadata.DEFAULT_DIFFUSE_TEXTURE_NAME,
		DiffuseColour: math.NewVec4(1, 1, 1, 1),
	}, false)
	if err != nil {
		return err
	}
	ms.defaultMaterial = id
	return nil
}

func (ms *MaterialSystem) Shutdown() error {
	ms.registry.Clear()
	ms.defaultMaterial = resources.InvalidID[metadata.Material]()
	return nil
}

// Acquire returns the material named config.Name, creating it from config
// on first use. Later calls only take a reference; their config is ignored.
func (ms *MaterialSystem) Acquire(config metadata.MaterialConfig, autoRelease bool) (resources.ID[metadata.Material], error) {
	if id, ok := ms.lookup[config.Name]; ok {
		if _, err := ms.registry.IncrementRef(id); err != nil {
			return resources.InvalidID[metadata.Material](), err
		}
		return id, nil
	}
	return ms.create(config, autoRelease)
}

// AcquireByID takes another reference on a live material.
func (ms *MaterialSystem) AcquireByID(id resources.ID[metadata.Material]) error {
	_, err := ms.registry.IncrementRef(id)
	return err
}

// Release drops one reference on the material called name.
func (ms *MaterialSystem) Release(name string) error {
	id, ok := ms.lookup[name]
	if !ok {
		err := fmt.Errorf("material system failed to release '%s': %w", name, core.ErrUnknownResource)
		core.LogError(err.Error())
		return err
	}
	return ms.ReleaseByID(id)
}

func (ms *MaterialSystem) ReleaseByID(id resources.ID[metadata.Material]) error {
	deleted, err := ms.registry.DecrementRef(id)
	if err != nil {
		return fmt.Errorf("release material %d: %w", id.Index(), err)
	}
	if deleted {
		core.LogDebug("material %d released", id.Index())
	}
	return nil
}

func (ms *MaterialSystem) Get(id resources.ID[metadata.Material]) (*metadata.Material, error) {
	return ms.registry.Get(id)
}

func (ms *MaterialSystem) Lookup(name string) (resources.ID[metadata.Material], bool) {
	id, ok := ms.lookup[name]
	return id, ok
}

func (ms *MaterialSystem) GetDefault() resources.ID[metadata.Material] {
	return ms.defaultMaterial
}

func (ms *MaterialSystem) Len() int {
	return ms.registry.Len()
}

// MaterialID is the sort key material field for id.
func MaterialID(id resources.ID[metadata.Material]) uint16 {
	return uint16(id.Index())
}

func (ms *MaterialSystem) create(config metadata.MaterialConfig, autoRelease bool) (resources.ID[metadata.Material], error) {
	invalid := resources.InvalidID[metadata.Material]()
	if config.Name == "" {
		return invalid, fmt.Errorf("material must have a name")
	}
	shaderName := config.ShaderName
	if shaderName == "" {
		shaderName = metadata.BUILTIN_SHADER_NAME_WORLD
	}
	shaderID, ok := ms.shaderSystem.GetID(shaderName)
	if !ok {
		return invalid, fmt.Errorf("material '%s' shader '%s': %w", config.Name, shaderName, core.ErrUnknownResource)
	}
	shader, err := ms.shaderSystem.Get(shaderID)
	if err != nil {
		return invalid, err
	}

	diffuseMap := config.DiffuseMap
	if diffuseMap == "" {
		diffuseMap = metadata.DEFAULT_DIFFUSE_TEXTURE_NAME
	}
	diffuse, err := ms.textureSystem.AcquireRef(diffuseMap)
	if err != nil {
		core.LogWarn("material '%s' could not load diffuse map '%s', using the default: %s", config.Name, diffuseMap, err)
		if diffuse, err = ms.textureSystem.AcquireRef(metadata.DEFAULT_DIFFUSE_TEXTURE_NAME); err != nil {
			return invalid, err
		}
	}
	texture, err := diffuse.Get()
	if err != nil {
		diffuse.Release()
		return invalid, err
	}

	translucency := config.Translucency
	if texture.HasTransparency() && translucency == metadata.TranslucencyOpaque {
		translucency = metadata.TranslucencyAlphaBlend
	}

	set, err := ms.device.CreateDescriptorSet(shader.Pipeline, []metadata.TextureHandle{texture.Device})
	if err != nil {
		diffuse.Release()
		return invalid, fmt.Errorf("material '%s' descriptor set: %w", config.Name, err)
	}

	material := metadata.Material{
		Name:           config.Name,
		ShaderName:     shaderName,
		DiffuseMap:     diffuseMap,
		DiffuseColour:  config.DiffuseColour,
		Translucency:   translucency,
		Shader:         shaderID,
		DiffuseTexture: diffuse,
		DescriptorSet:  set,
	}
	var id resources.ID[metadata.Material]
	if autoRelease {
		id, err = ms.registry.Emplace(material)
	} else {
		id, err = ms.registry.EmplacePersistent(material)
	}
	if err != nil {
		ms.destroy(invalid, material)
		return invalid, fmt.Errorf("material '%s': %w", config.Name, err)
	}
	ms.lookup[config.Name] = id
	return id, nil
}

func (ms *MaterialSystem) destroy(id resources.ID[metadata.Material], material metadata.Material) {
	if err := ms.device.DestroyDescriptorSet(material.DescriptorSet); err != nil {
		core.LogError("failed to destroy descriptor set of material '%s': %s", material.Name, err)
	}
	if _, err := material.DiffuseTexture.Release(); err != nil {
		core.LogError("failed to release diffuse texture of material '%s': %s", material.Name, err)
	}
	if current, ok := ms.lookup[material.Name]; ok && current == id {
		delete(ms.lookup, material.Name)
	}
}
