package systems

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/math"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

type GeometrySystemConfig struct {
	/**
	 * @brief Max number of geometries that can be loaded at once.
	 * NOTE: Should be significantly greater than the number of static meshes because
	 * the there can and will be more than one of these per mesh.
	 * Take other systems into account as well.
	 */
	MaxGeometryCount uint32
}

// GeometrySystem owns vertex and index buffers uploaded to the device.
type GeometrySystem struct {
	Config   *GeometrySystemConfig
	lookup   map[string]resources.ID[metadata.Geometry]
	registry *resources.Registry[metadata.Geometry]

	defaultGeometry resources.ID[metadata.Geometry]

	device metadata.DeviceAllocator
}

func NewGeometrySystem(config *GeometrySystemConfig, device metadata.DeviceAllocator) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogWarn(err.Error())
		return nil, err
	}
	gs := &GeometrySystem{
		Config:          config,
		lookup:          make(map[string]resources.ID[metadata.Geometry]),
		defaultGeometry: resources.InvalidID[metadata.Geometry](),
		device:          device,
	}
	registry, err := resources.NewRegistry[metadata.Geometry](
		resources.WithCapacity[metadata.Geometry](config.MaxGeometryCount),
		resources.WithReleaseFunc[metadata.Geometry](gs.destroy),
	)
	if err != nil {
		return nil, err
	}
	gs.registry = registry
	return gs, nil
}

// Initialize uploads the default geometry, a 10x10 quad using the default
// material.
func (gs *GeometrySystem) Initialize() error {
	config := GeneratePlaneConfig(metadata.DEFAULT_GEOMETRY_NAME, 10, 10, metadata.DEFAULT_MATERIAL_NAME)
	id, err := gs.Create(config, false)
	if err != nil {
		err = fmt.Errorf("failed to create default geometries. Application cannot continue: %w", err)
		core.LogError(err.Error())
		return err
	}
	gs.defaultGeometry = id
	return nil
}

func (gs *GeometrySystem) Shutdown() error {
	gs.registry.Clear()
	gs.defaultGeometry = resources.InvalidID[metadata.Geometry]()
	return nil
}

// Create uploads config. Named geometries can later be acquired by name.
// Geometries created with autoRelease=false are persistent.
func (gs *GeometrySystem) Create(config metadata.GeometryConfig, autoRelease bool) (resources.ID[metadata.Geometry], error) {
	invalid := resources.InvalidID[metadata.Geometry]()
	if config.Name != "" {
		if _, ok := gs.lookup[config.Name]; ok {
			return invalid, fmt.Errorf("geometry '%s' already exists", config.Name)
		}
	}
	if config.VertexCount == 0 || config.VertexSize == 0 {
		return invalid, fmt.Errorf("geometry '%s' has no vertices", config.Name)
	}
	vertexBytes := uint64(config.VertexSize) * uint64(config.VertexCount)
	if uint64(len(config.Vertices)) != vertexBytes {
		return invalid, fmt.Errorf("geometry '%s' expects %d bytes of vertices, got %d", config.Name, vertexBytes, len(config.Vertices))
	}
	for _, index := range config.Indices {
		if index >= config.VertexCount {
			return invalid, fmt.Errorf("geometry '%s' index %d out of range", config.Name, index)
		}
	}

	geometry := metadata.Geometry{
		Name:         config.Name,
		MaterialName: config.MaterialName,
		VertexCount:  config.VertexCount,
		IndexCount:   uint32(len(config.Indices)),
		Center:       config.Center,
	}
	var err error
	geometry.VertexBuffer, err = gs.device.CreateBuffer(metadata.BufferKindVertex, vertexBytes, config.Vertices)
	if err != nil {
		err = fmt.Errorf("geometry '%s' vertex buffer: %w", config.Name, err)
		core.LogError(err.Error())
		return invalid, err
	}
	if len(config.Indices) > 0 {
		indexBytes := make([]byte, 4*len(config.Indices))
		for i, index := range config.Indices {
			binary.LittleEndian.PutUint32(indexBytes[4*i:], index)
		}
		geometry.IndexBuffer, err = gs.device.CreateBuffer(metadata.BufferKindIndex, uint64(len(indexBytes)), indexBytes)
		if err != nil {
			gs.destroyBuffers(geometry)
			err = fmt.Errorf("geometry '%s' index buffer: %w", config.Name, err)
			core.LogError(err.Error())
			return invalid, err
		}
	}

	var id resources.ID[metadata.Geometry]
	if autoRelease {
		id, err = gs.registry.Emplace(geometry)
	} else {
		id, err = gs.registry.EmplacePersistent(geometry)
	}
	if err != nil {
		gs.destroyBuffers(geometry)
		return invalid, fmt.Errorf("geometry '%s': %w", config.Name, err)
	}
	if config.Name != "" {
		gs.lookup[config.Name] = id
	}
	return id, nil
}

// Acquire takes a reference on the geometry called name.
func (gs *GeometrySystem) Acquire(name string) (resources.ID[metadata.Geometry], error) {
	id, ok := gs.lookup[name]
	if !ok {
		return resources.InvalidID[metadata.Geometry](), fmt.Errorf("geometry '%s': %w", name, core.ErrUnknownResource)
	}
	if err := gs.AcquireByID(id); err != nil {
		return resources.InvalidID[metadata.Geometry](), err
	}
	return id, nil
}

func (gs *GeometrySystem) AcquireByID(id resources.ID[metadata.Geometry]) error {
	_, err := gs.registry.IncrementRef(id)
	return err
}

// Release drops one reference; the buffers are destroyed with the last one
// unless the geometry is persistent.
func (gs *GeometrySystem) Release(id resources.ID[metadata.Geometry]) error {
	if _, err := gs.registry.DecrementRef(id); err != nil {
		return fmt.Errorf("release geometry %d: %w", id.Index(), err)
	}
	return nil
}

func (gs *GeometrySystem) Get(id resources.ID[metadata.Geometry]) (*metadata.Geometry, error) {
	return gs.registry.Get(id)
}

func (gs *GeometrySystem) Lookup(name string) (resources.ID[metadata.Geometry], bool) {
	id, ok := gs.lookup[name]
	return id, ok
}

func (gs *GeometrySystem) GetDefault() resources.ID[metadata.Geometry] {
	return gs.defaultGeometry
}

func (gs *GeometrySystem) Len() int {
	return gs.registry.Len()
}

func (gs *GeometrySystem) destroy(id resources.ID[metadata.Geometry], geometry metadata.Geometry) {
	gs.destroyBuffers(geometry)
	if current, ok := gs.lookup[geometry.Name]; ok && current == id {
		delete(gs.lookup, geometry.Name)
	}
}

func (gs *GeometrySystem) destroyBuffers(geometry metadata.Geometry) {
	if geometry.VertexBuffer != metadata.NullHandle {
		if err := gs.device.DestroyBuffer(geometry.VertexBuffer); err != nil {
			core.LogError("failed to destroy vertex buffer of geometry '%s': %s", geometry.Name, err)
		}
	}
	if geometry.IndexBuffer != metadata.NullHandle {
		if err := gs.device.DestroyBuffer(geometry.IndexBuffer); err != nil {
			core.LogError("failed to destroy index buffer of geometry '%s': %s", geometry.Name, err)
		}
	}
}

// PlaneVertexSize is the size of a plane vertex: position xyz and texcoord uv.
const PlaneVertexSize uint32 = 5 * 4

// GeneratePlaneConfig builds a width x height quad on the XY plane centred on
// the origin.
func GeneratePlaneConfig(name string, width, height float32, materialName string) metadata.GeometryConfig {
	hw, hh := width*0.5, height*0.5
	corners := [4][5]float32{
		{-hw, -hh, 0, 0, 0},
		{hw, hh, 0, 1, 1},
		{-hw, hh, 0, 0, 1},
		{hw, -hh, 0, 1, 0},
	}
	vertices := make([]byte, 0, 4*PlaneVertexSize)
	for _, corner := range corners {
		for _, f := range corner {
			vertices = binary.LittleEndian.AppendUint32(vertices, gomath.Float32bits(f))
		}
	}
	return metadata.GeometryConfig{
		Name:         name,
		MaterialName: materialName,
		VertexSize:   PlaneVertexSize,
		VertexCount:  4,
		Vertices:     vertices,
		Indices:      []uint32{0, 1, 2, 0, 3, 1},
		Center:       math.NewVec3Zero(),
	}
}
