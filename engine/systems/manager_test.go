package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer"
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

func TestSystemManagerDrawFrame(t *testing.T) {
	sm, hb := newTestManager(t)
	s, err := commands.NewScheduler(hb)
	require.NoError(t, err)

	require.NoError(t, sm.RenderViewSystem().Create(worldView("world", 0)))
	wall, err := sm.MaterialSystem().Acquire(metadata.MaterialConfig{Name: "wall", DiffuseMap: "brick"}, true)
	require.NoError(t, err)
	for _, material := range []resources.ID[metadata.Material]{
		sm.MaterialSystem().GetDefault(), wall, sm.MaterialSystem().GetDefault(),
	} {
		_, err := sm.RenderObjectSystem().Add(metadata.RenderObject{
			Geometry: sm.GeometrySystem().GetDefault(),
			Material: material,
			Visible:  true,
			ViewMask: 1,
		})
		require.NoError(t, err)
	}

	report, err := sm.DrawFrame(s)
	require.NoError(t, err)
	assert.False(t, report.Aborted)
	assert.Equal(t, 7, report.Commands)
	// One program, two materials.
	assert.Equal(t, 3, report.StateChanges)

	stats := hb.Stats()
	assert.Equal(t, uint64(1), stats.Frames)
	assert.Equal(t, uint64(1), stats.ShaderBinds)
	assert.Equal(t, uint64(2), stats.MaterialBinds)
	assert.Equal(t, uint64(3), stats.Draws)
	assert.Equal(t, uint64(1), stats.Presents)
}

func TestSystemManagerAbortedFrameRecovers(t *testing.T) {
	sm, hb := newTestManager(t)
	s, err := commands.NewScheduler(hb)
	require.NoError(t, err)
	rvs := sm.RenderViewSystem()
	require.NoError(t, rvs.Create(worldView("world", 0)))

	view, err := rvs.Get("world")
	require.NoError(t, err)
	camera := view.Camera
	_, err = camera.Release()
	require.NoError(t, err)

	report, err := sm.DrawFrame(s)
	assert.ErrorIs(t, err, core.ErrFrameAborted)
	assert.ErrorIs(t, err, core.ErrReleasedRef)
	assert.True(t, report.Aborted)
	assert.Equal(t, uint64(0), hb.Stats().Frames)

	view.Camera, err = sm.CameraSystem().AcquireRef("")
	require.NoError(t, err)
	report, err = sm.DrawFrame(s)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), report.Number)
	assert.Equal(t, uint64(1), hb.Stats().Frames)
}

func TestSystemManagerShutdownReleasesDevice(t *testing.T) {
	sm, hb := newTestManager(t)
	require.NoError(t, sm.RenderViewSystem().Create(worldView("world", 0)))
	_, err := sm.MaterialSystem().Acquire(metadata.MaterialConfig{Name: "wall", DiffuseMap: "brick"}, true)
	require.NoError(t, err)
	_, err = sm.RenderObjectSystem().Add(metadata.RenderObject{
		Geometry: sm.GeometrySystem().GetDefault(),
		Material: resources.InvalidID[metadata.Material](),
	})
	require.NoError(t, err)
	assert.NotZero(t, hb.Live())

	require.NoError(t, sm.Shutdown())
	assert.Equal(t, 0, hb.Live())
}

func TestNewSystemManagerValidation(t *testing.T) {
	_, err := NewSystemManager(testSystemsConfig(), nil, nil)
	assert.Error(t, err)

	cfg := testSystemsConfig()
	cfg.MaxViewCount = 0
	_, err = NewSystemManager(cfg, renderer.NewHeadlessBackend(), nil)
	assert.Error(t, err)
}
