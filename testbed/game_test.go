package testbed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-core/engine"
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer"
)

func TestTestbedScene(t *testing.T) {
	tb, err := NewTestGame()
	require.NoError(t, err)

	cfg := core.DefaultEngineConfig()
	cfg.Frames = 4
	cfg.TargetFPS = 0
	hb := renderer.NewHeadlessBackend()
	e, err := engine.New(tb.Game, cfg, hb)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.Equal(t, 8, tb.SystemManager.RenderObjectSystem().Len())

	require.NoError(t, e.Run(context.Background()))
	stats := hb.Stats()
	assert.Equal(t, uint64(4), stats.Frames)
	// 7 world objects and the hud quad every frame.
	assert.Equal(t, uint64(32), stats.Draws)
	assert.Equal(t, uint64(8), stats.Passes)

	require.NoError(t, e.Shutdown())
	assert.Equal(t, 0, hb.Live())
}

func TestProceduralTextures(t *testing.T) {
	texture, pixels, err := proceduralTexture("glass")
	require.NoError(t, err)
	assert.True(t, texture.HasTransparency())
	assert.Len(t, pixels, int(proceduralSize*proceduralSize*4))

	_, _, err = proceduralTexture("missing")
	assert.ErrorIs(t, err, core.ErrUnknownResource)
}
