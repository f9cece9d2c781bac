package systems

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

// TextureLoader produces the description and pixels of a named texture.
// Returning core.ErrUnknownResource makes Acquire fail for that name.
type TextureLoader func(name string) (metadata.Texture, []uint8, error)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
	Loader          TextureLoader
}

type TextureSystem struct {
	Config *TextureSystemConfig
	// Registered textures, reference counted.
	registry *resources.Registry[metadata.Texture]
	// Name lookups.
	lookup map[string]resources.ID[metadata.Texture]

	defaultTexture        resources.ID[metadata.Texture]
	defaultDiffuseTexture resources.ID[metadata.Texture]

	device metadata.DeviceAllocator
}

func NewTextureSystem(config *TextureSystemConfig, device metadata.DeviceAllocator) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}

	ts := &TextureSystem{
		Config:                config,
		lookup:                make(map[string]resources.ID[metadata.Texture]),
		defaultTexture:        resources.InvalidID[metadata.Texture](),
		defaultDiffuseTexture: resources.InvalidID[metadata.Texture](),
		device:                device,
	}
	registry, err := resources.NewRegistry[metadata.Texture](
		resources.WithCapacity[metadata.Texture](config.MaxTextureCount),
		resources.WithReleaseFunc[metadata.Texture](ts.destroy),
	)
	if err != nil {
		return nil, err
	}
	ts.registry = registry
	return ts, nil
}

// Initialize creates the default textures. They are persistent and live
// until Shutdown.
func (ts *TextureSystem) Initialize() error {
	var err error
	ts.defaultTexture, err = ts.create(checkerboard(metadata.DEFAULT_TEXTURE_NAME, 16), false)
	if err != nil {
		return err
	}
	ts.defaultDiffuseTexture, err = ts.create(solid(metadata.DEFAULT_DIFFUSE_TEXTURE_NAME, 16, 0xFF), false)
	return err
}

// Shutdown destroys every texture, whatever its reference count.
func (ts *TextureSystem) Shutdown() error {
	ts.registry.Clear()
	ts.defaultTexture = resources.InvalidID[metadata.Texture]()
	ts.defaultDiffuseTexture = resources.InvalidID[metadata.Texture]()
	return nil
}

func isDefaultTexture(name string) bool {
	return name == metadata.DEFAULT_TEXTURE_NAME || name == metadata.DEFAULT_DIFFUSE_TEXTURE_NAME
}

// Acquire returns the texture called name, loading it on first use. A
// texture acquired with autoRelease=false is persistent and stays loaded
// when its count reaches zero. Each Acquire must be paired with a Release.
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (resources.ID[metadata.Texture], error) {
	if isDefaultTexture(name) {
		core.LogWarn("texture system Acquire called for default texture '%s'. Use GetDefaultTexture instead", name)
		id := ts.lookup[name]
		if _, err := ts.registry.IncrementRef(id); err != nil {
			return resources.InvalidID[metadata.Texture](), err
		}
		return id, nil
	}
	if id, ok := ts.lookup[name]; ok {
		if _, err := ts.registry.IncrementRef(id); err != nil {
			return resources.InvalidID[metadata.Texture](), err
		}
		return id, nil
	}
	if ts.Config.Loader == nil {
		return resources.InvalidID[metadata.Texture](), fmt.Errorf("texture '%s': %w", name, core.ErrUnknownResource)
	}
	texture, pixels, err := ts.Config.Loader(name)
	if err != nil {
		if !errors.Is(err, core.ErrUnknownResource) {
			core.LogError("failed to load texture '%s': %s", name, err)
		}
		return resources.InvalidID[metadata.Texture](), fmt.Errorf("texture '%s': %w", name, err)
	}
	texture.Name = name
	return ts.create(textureData{texture: texture, pixels: pixels}, autoRelease)
}

// Preload loads names on the job system's workers and registers the
// results. Each preloaded texture is persistent and holds one reference, as
// with Acquire(name, false). Names that are already loaded are skipped. The
// first loader error is returned after every job has finished.
func (ts *TextureSystem) Preload(js *JobSystem, names []string) error {
	if ts.Config.Loader == nil {
		return fmt.Errorf("texture preload: %w: no loader configured", core.ErrUnknownResource)
	}
	pending := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := ts.lookup[name]; !ok && !slices.Contains(pending, name) {
			pending = append(pending, name)
		}
	}
	results := make([]textureData, len(pending))
	errs := make([]error, len(pending))
	for i, name := range pending {
		err := js.Submit(Job{
			Name: "load texture " + name,
			Run: func() error {
				texture, pixels, err := ts.Config.Loader(name)
				if err != nil {
					errs[i] = fmt.Errorf("texture '%s': %w", name, err)
					return errs[i]
				}
				texture.Name = name
				results[i] = textureData{texture: texture, pixels: pixels}
				return nil
			},
		})
		if err != nil {
			errs[i] = err
		}
	}
	js.Wait()

	for i := range pending {
		if errs[i] != nil {
			continue
		}
		if _, err := ts.create(results[i], false); err != nil {
			errs[i] = err
		}
	}
	return errors.Join(errs...)
}

// AcquireRef is Acquire with autoRelease, wrapped in a Ref that owns the
// acquired reference.
func (ts *TextureSystem) AcquireRef(name string) (*resources.Ref[metadata.Texture], error) {
	id, err := ts.Acquire(name, true)
	if err != nil {
		return nil, err
	}
	return ts.registry.Adopt(id)
}

// AcquireWriteable creates an empty texture that can be rendered to. It is
// never auto released.
func (ts *TextureSystem) AcquireWriteable(name string, width, height uint32, channelCount uint8, hasTransparency bool) (resources.ID[metadata.Texture], error) {
	if _, ok := ts.lookup[name]; ok {
		return resources.InvalidID[metadata.Texture](), fmt.Errorf("texture '%s' already exists", name)
	}
	texture := metadata.Texture{
		Name:         name,
		TextureType:  metadata.TextureType2d,
		Width:        width,
		Height:       height,
		ChannelCount: channelCount,
		Flags:        metadata.TextureFlagIsWriteable,
	}
	if hasTransparency {
		texture.Flags |= metadata.TextureFlagHasTransparency
	}
	return ts.create(textureData{texture: texture}, false)
}

// Release drops one reference to the texture called name. Persistent
// textures, the defaults included, stay loaded at zero.
func (ts *TextureSystem) Release(name string) error {
	id, ok := ts.lookup[name]
	if !ok {
		err := fmt.Errorf("texture system failed to release '%s': %w", name, core.ErrUnknownResource)
		core.LogError(err.Error())
		return err
	}
	deleted, err := ts.registry.DecrementRef(id)
	if err != nil {
		return fmt.Errorf("release texture '%s': %w", name, err)
	}
	if deleted {
		core.LogDebug("texture '%s' released", name)
	}
	return nil
}

func (ts *TextureSystem) Get(id resources.ID[metadata.Texture]) (*metadata.Texture, error) {
	return ts.registry.Get(id)
}

func (ts *TextureSystem) Lookup(name string) (resources.ID[metadata.Texture], bool) {
	id, ok := ts.lookup[name]
	return id, ok
}

func (ts *TextureSystem) RefCount(name string) (uint32, error) {
	id, ok := ts.lookup[name]
	if !ok {
		return 0, core.ErrUnknownResource
	}
	return ts.registry.RefCount(id)
}

func (ts *TextureSystem) GetDefaultTexture() resources.ID[metadata.Texture] {
	return ts.defaultTexture
}

func (ts *TextureSystem) GetDefaultDiffuseTexture() resources.ID[metadata.Texture] {
	return ts.defaultDiffuseTexture
}

func (ts *TextureSystem) Len() int {
	return ts.registry.Len()
}

type textureData struct {
	texture metadata.Texture
	pixels  []uint8
}

func (ts *TextureSystem) create(data textureData, autoRelease bool) (resources.ID[metadata.Texture], error) {
	texture := data.texture
	handle, err := ts.device.CreateTexture(&texture, data.pixels)
	if err != nil {
		core.LogError("failed to create texture '%s': %s", texture.Name, err)
		return resources.InvalidID[metadata.Texture](), err
	}
	texture.Device = handle

	var id resources.ID[metadata.Texture]
	if autoRelease {
		id, err = ts.registry.Emplace(texture)
	} else {
		id, err = ts.registry.EmplacePersistent(texture)
	}
	if err != nil {
		if derr := ts.device.DestroyTexture(handle); derr != nil {
			core.LogError("failed to destroy texture '%s': %s", texture.Name, derr)
		}
		return resources.InvalidID[metadata.Texture](), fmt.Errorf("texture '%s': %w", texture.Name, err)
	}
	ts.lookup[texture.Name] = id
	return id, nil
}

func (ts *TextureSystem) destroy(id resources.ID[metadata.Texture], texture metadata.Texture) {
	if err := ts.device.DestroyTexture(texture.Device); err != nil {
		core.LogError("failed to destroy texture '%s': %s", texture.Name, err)
	}
	if current, ok := ts.lookup[texture.Name]; ok && current == id {
		delete(ts.lookup, texture.Name)
	}
}

// checkerboard builds a size x size blue and white RGBA checkerboard, the
// texture shown when nothing else is available.
func checkerboard(name string, size uint32) textureData {
	pixels := make([]uint8, size*size*4)
	for i := range pixels {
		pixels[i] = 0xFF
	}
	for row := uint32(0); row < size; row++ {
		for col := uint32(0); col < size; col++ {
			if (row%2 == 0) != (col%2 == 0) {
				continue
			}
			index := (row*size + col) * 4
			pixels[index] = 0
			pixels[index+1] = 0
		}
	}
	return textureData{
		texture: metadata.Texture{Name: name, Width: size, Height: size, ChannelCount: 4},
		pixels:  pixels,
	}
}

func solid(name string, size uint32, value uint8) textureData {
	pixels := make([]uint8, size*size*4)
	for i := range pixels {
		pixels[i] = value
	}
	return textureData{
		texture: metadata.Texture{Name: name, Width: size, Height: size, ChannelCount: 4},
		pixels:  pixels,
	}
}
