package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/math"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

func TestRenderObjectSystemHoldsReferences(t *testing.T) {
	sm, _ := newTestManager(t)
	ros, gs, ms := sm.RenderObjectSystem(), sm.GeometrySystem(), sm.MaterialSystem()

	quad, err := gs.Create(GeneratePlaneConfig("quad", 1, 1, ""), true)
	require.NoError(t, err)
	wall, err := ms.Acquire(metadata.MaterialConfig{Name: "wall", DiffuseMap: "brick"}, true)
	require.NoError(t, err)

	h, err := ros.Add(metadata.RenderObject{Name: "w", Geometry: quad, Material: wall, Visible: true, ViewMask: 1})
	require.NoError(t, err)

	// The creators drop their references; the object keeps both alive.
	require.NoError(t, gs.Release(quad))
	require.NoError(t, ms.ReleaseByID(wall))
	_, err = gs.Get(quad)
	require.NoError(t, err)
	_, err = ms.Get(wall)
	require.NoError(t, err)

	object, err := ros.Get(h)
	require.NoError(t, err)
	assert.Equal(t, "w", object.Name)

	require.NoError(t, ros.Remove(h))
	assert.Equal(t, 0, ros.Len())
	_, ok := gs.Lookup("quad")
	assert.False(t, ok)
	_, ok = ms.Lookup("wall")
	assert.False(t, ok)
	assert.ErrorIs(t, ros.Remove(h), core.ErrStaleHandle)
}

func TestRenderObjectSystemMaterialFallback(t *testing.T) {
	sm, _ := newTestManager(t)
	ros, gs, ms := sm.RenderObjectSystem(), sm.GeometrySystem(), sm.MaterialSystem()

	wall, err := ms.Acquire(metadata.MaterialConfig{Name: "wall", DiffuseMap: "brick"}, true)
	require.NoError(t, err)
	quad, err := gs.Create(GeneratePlaneConfig("quad", 1, 1, "wall"), true)
	require.NoError(t, err)

	h, err := ros.Add(metadata.RenderObject{Geometry: quad, Material: resources.InvalidID[metadata.Material]()})
	require.NoError(t, err)
	object, err := ros.Get(h)
	require.NoError(t, err)
	assert.Equal(t, wall, object.Material)

	h, err = ros.Add(metadata.RenderObject{Geometry: gs.GetDefault(), Material: resources.InvalidID[metadata.Material]()})
	require.NoError(t, err)
	object, err = ros.Get(h)
	require.NoError(t, err)
	assert.Equal(t, ms.GetDefault(), object.Material)
}

func TestRenderObjectSystemValidation(t *testing.T) {
	sm, _ := newTestManager(t)
	ros, gs := sm.RenderObjectSystem(), sm.GeometrySystem()

	_, err := ros.Add(metadata.RenderObject{Geometry: resources.ID[metadata.Geometry](9), Material: resources.InvalidID[metadata.Material]()})
	assert.Error(t, err)

	// An unknown material does not leak the geometry reference.
	_, err = ros.Add(metadata.RenderObject{Geometry: gs.GetDefault(), Material: resources.ID[metadata.Material](9)})
	assert.Error(t, err)
	count, err := gs.registry.RefCount(gs.GetDefault())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)
}

func TestRenderObjectSystemCapacity(t *testing.T) {
	sm := newTestManagerConfig(t, func(cfg *core.SystemsConfig) { cfg.MaxRenderObjects = 2 })
	ros, gs := sm.RenderObjectSystem(), sm.GeometrySystem()
	for i := 0; i < 2; i++ {
		_, err := ros.Add(metadata.RenderObject{Geometry: gs.GetDefault(), Material: resources.InvalidID[metadata.Material](), Position: math.NewVec3(float32(i), 0, 0)})
		require.NoError(t, err)
	}
	_, err := ros.Add(metadata.RenderObject{Geometry: gs.GetDefault(), Material: resources.InvalidID[metadata.Material]()})
	assert.ErrorIs(t, err, core.ErrCapacityExceeded)

	require.NoError(t, ros.Shutdown())
	assert.Equal(t, 0, ros.Len())
	count, err := gs.registry.RefCount(gs.GetDefault())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)
}
