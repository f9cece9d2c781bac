package systems

import (
	"errors"
	"fmt"
	"iter"

	"github.com/spaghettifunk/anima-core/engine/containers"
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

type RenderObjectSystemConfig struct {
	MaxRenderObjects uint32
}

// RenderObjectSystem keeps the drawable instances of the scene densely
// packed so views can walk them without holes. Each object holds a
// reference on its geometry and material for as long as it exists.
type RenderObjectSystem struct {
	Config    *RenderObjectSystemConfig
	objects   *containers.SparseArray[metadata.RenderObject]
	geometry  *GeometrySystem
	materials *MaterialSystem
}

func NewRenderObjectSystem(config *RenderObjectSystemConfig, gs *GeometrySystem, ms *MaterialSystem) (*RenderObjectSystem, error) {
	if config.MaxRenderObjects == 0 {
		err := fmt.Errorf("func NewRenderObjectSystem - config.MaxRenderObjects must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if gs == nil || ms == nil {
		return nil, fmt.Errorf("func NewRenderObjectSystem - geometry and material systems are required")
	}
	return &RenderObjectSystem{
		Config:    config,
		objects:   containers.NewSparseArrayWithCapacity[metadata.RenderObject](int(min(config.MaxRenderObjects, 1024))),
		geometry:  gs,
		materials: ms,
	}, nil
}

// Add registers object. An invalid material falls back to the geometry's
// material by name, then to the default material.
func (rs *RenderObjectSystem) Add(object metadata.RenderObject) (containers.Handle[metadata.RenderObject], error) {
	invalid := containers.InvalidHandle[metadata.RenderObject]()
	if uint32(rs.objects.Len()) >= rs.Config.MaxRenderObjects {
		return invalid, fmt.Errorf("render object '%s': %w (capacity %d)", object.Name, core.ErrCapacityExceeded, rs.Config.MaxRenderObjects)
	}
	geometry, err := rs.geometry.Get(object.Geometry)
	if err != nil {
		return invalid, fmt.Errorf("render object '%s' geometry: %w", object.Name, err)
	}
	if !object.Material.IsValid() {
		object.Material = rs.materials.GetDefault()
		if id, ok := rs.materials.Lookup(geometry.MaterialName); ok {
			object.Material = id
		}
	}
	if err := rs.geometry.AcquireByID(object.Geometry); err != nil {
		return invalid, err
	}
	if err := rs.materials.AcquireByID(object.Material); err != nil {
		if rerr := rs.geometry.Release(object.Geometry); rerr != nil {
			core.LogError("render object '%s': %s", object.Name, rerr)
		}
		return invalid, fmt.Errorf("render object '%s' material: %w", object.Name, err)
	}
	return rs.objects.Add(object), nil
}

// Remove drops the object and the references it held.
func (rs *RenderObjectSystem) Remove(h containers.Handle[metadata.RenderObject]) error {
	object, err := rs.objects.Get(h)
	if err != nil {
		return err
	}
	removed := *object
	if err := rs.objects.Remove(h); err != nil {
		return err
	}
	return rs.release(removed)
}

func (rs *RenderObjectSystem) release(object metadata.RenderObject) error {
	var errs []error
	if err := rs.materials.ReleaseByID(object.Material); err != nil {
		errs = append(errs, err)
	}
	if err := rs.geometry.Release(object.Geometry); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("render object '%s': %w", object.Name, err)
	}
	return nil
}

func (rs *RenderObjectSystem) Get(h containers.Handle[metadata.RenderObject]) (*metadata.RenderObject, error) {
	return rs.objects.Get(h)
}

func (rs *RenderObjectSystem) Len() int {
	return rs.objects.Len()
}

func (rs *RenderObjectSystem) All() iter.Seq2[containers.Handle[metadata.RenderObject], *metadata.RenderObject] {
	return rs.objects.All()
}

// Shutdown removes every object and releases its references.
func (rs *RenderObjectSystem) Shutdown() error {
	for _, object := range rs.objects.Values() {
		if err := rs.release(object); err != nil {
			core.LogWarn(err.Error())
		}
	}
	rs.objects.Clear()
	return nil
}

// resolve returns the geometry and material an object draws with.
func (rs *RenderObjectSystem) resolve(object *metadata.RenderObject) (*metadata.Geometry, *metadata.Material, error) {
	geometry, err := rs.geometry.Get(object.Geometry)
	if err != nil {
		return nil, nil, err
	}
	material, err := rs.materials.Get(object.Material)
	if err != nil {
		return nil, nil, err
	}
	return geometry, material, nil
}
