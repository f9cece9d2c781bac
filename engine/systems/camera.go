package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

type CameraSystem struct {
	Config   *CameraSystemConfig
	lookup   map[string]resources.ID[metadata.Camera]
	registry *resources.Registry[metadata.Camera]
	// A default camera that always exists as a fallback.
	defaultCamera resources.ID[metadata.Camera]
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of cameras that can be managed by
	 * the system.
	 */
	MaxCameraCount uint32
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	cs := &CameraSystem{
		Config:        config,
		lookup:        make(map[string]resources.ID[metadata.Camera]),
		defaultCamera: resources.InvalidID[metadata.Camera](),
	}
	registry, err := resources.NewRegistry[metadata.Camera](
		resources.WithCapacity[metadata.Camera](config.MaxCameraCount),
		resources.WithReleaseFunc[metadata.Camera](cs.destroy),
	)
	if err != nil {
		return nil, err
	}
	cs.registry = registry
	return cs, nil
}

// Initialize registers the default camera. It is persistent.
func (cs *CameraSystem) Initialize() error {
	id, err := cs.registry.EmplacePersistent(metadata.NewCamera(metadata.DEFAULT_CAMERA_NAME))
	if err != nil {
		return err
	}
	cs.lookup[metadata.DEFAULT_CAMERA_NAME] = id
	cs.defaultCamera = id
	return nil
}

/**
 * @brief Shuts down the camera system.
 */
func (cs *CameraSystem) Shutdown() error {
	cs.registry.Clear()
	cs.defaultCamera = resources.InvalidID[metadata.Camera]()
	return nil
}

/**
 * @brief Acquires a camera by name.
 * If one is not found, a new one is created and retuned.
 * Internal reference counter is incremented.
 */
func (cs *CameraSystem) Acquire(name string) (resources.ID[metadata.Camera], error) {
	if name == "" {
		name = metadata.DEFAULT_CAMERA_NAME
	}
	if id, ok := cs.lookup[name]; ok {
		if _, err := cs.registry.IncrementRef(id); err != nil {
			return resources.InvalidID[metadata.Camera](), err
		}
		return id, nil
	}
	core.LogDebug("Creating new camera named '%s'...", name)
	id, err := cs.registry.Emplace(metadata.NewCamera(name))
	if err != nil {
		err = fmt.Errorf("failed to acquire new slot for camera '%s'. Adjust camera system config to allow more: %w", name, err)
		core.LogError(err.Error())
		return resources.InvalidID[metadata.Camera](), err
	}
	cs.lookup[name] = id
	return id, nil
}

// AcquireRef is Acquire returning an owned reference.
func (cs *CameraSystem) AcquireRef(name string) (*resources.Ref[metadata.Camera], error) {
	id, err := cs.Acquire(name)
	if err != nil {
		return nil, err
	}
	return cs.registry.Adopt(id)
}

/**
 * @brief Releases a camera with the given name. Internal reference
 * counter is decremented. If this reaches 0 the camera is removed.
 * The default camera is never removed.
 */
func (cs *CameraSystem) Release(name string) error {
	id, ok := cs.lookup[name]
	if !ok {
		return fmt.Errorf("camera '%s': %w", name, core.ErrUnknownResource)
	}
	_, err := cs.registry.DecrementRef(id)
	return err
}

func (cs *CameraSystem) Get(id resources.ID[metadata.Camera]) (*metadata.Camera, error) {
	return cs.registry.Get(id)
}

func (cs *CameraSystem) Lookup(name string) (resources.ID[metadata.Camera], bool) {
	id, ok := cs.lookup[name]
	return id, ok
}

/**
 * @brief Gets the default camera.
 */
func (cs *CameraSystem) GetDefault() resources.ID[metadata.Camera] {
	return cs.defaultCamera
}

func (cs *CameraSystem) Len() int {
	return cs.registry.Len()
}

func (cs *CameraSystem) destroy(id resources.ID[metadata.Camera], camera metadata.Camera) {
	if current, ok := cs.lookup[camera.Name]; ok && current == id {
		delete(cs.lookup, camera.Name)
	}
}
