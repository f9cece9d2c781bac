package commands

import (
	"testing"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T, f KeyFields) SortKey {
	t.Helper()
	k, err := f.Key()
	require.NoError(t, err)
	return k
}

func TestSortKeyPassDominates(t *testing.T) {
	low := mustKey(t, KeyFields{
		Pass:         1,
		Layer:        MaxLayer,
		Kind:         KindPresent,
		Program:      MaxProgram,
		Material:     MaxMaterial,
		Depth:        depthMask,
		Translucency: metadata.TranslucencyAlphaBlend,
		Viewport:     255,
		Fullscreen:   true,
	})
	high := mustKey(t, KeyFields{Pass: 2})
	assert.Less(t, low, high)
}

func TestSortKeyFieldPriority(t *testing.T) {
	base := KeyFields{Pass: 3, Layer: metadata.ViewLayerWorld, Kind: KindDrawMesh, Program: 10, Material: 10, Depth: 10, Viewport: 1}
	// Each step bumps a less significant field while lowering a more
	// significant one; the more significant field must win.
	steps := []func(f *KeyFields){
		func(f *KeyFields) { f.Layer++; f.Kind = 0; f.Program = MaxProgram },
		func(f *KeyFields) { f.Kind++; f.Program = 0; f.Material = MaxMaterial },
		func(f *KeyFields) { f.Program++; f.Material = 0; f.Depth = depthMask },
		func(f *KeyFields) { f.Material++; f.Depth = 0; f.Translucency = metadata.TranslucencyAlphaBlend },
		func(f *KeyFields) { f.Depth++; f.Translucency = 0; f.Viewport = 255 },
		func(f *KeyFields) { f.Translucency++; f.Viewport = 0; f.Fullscreen = true },
	}
	for i, step := range steps {
		next := base
		step(&next)
		assert.Less(t, mustKey(t, base), mustKey(t, next), "step %d", i)
		base = next
	}
}

func TestSortKeyFieldsRoundTrip(t *testing.T) {
	f := KeyFields{
		Pass:         5,
		Layer:        metadata.ViewLayerOverlay,
		Kind:         KindBindMaterial,
		Program:      1234,
		Material:     54321,
		Depth:        777,
		Translucency: metadata.TranslucencyAdditive,
		Viewport:     9,
		Fullscreen:   true,
	}
	assert.Equal(t, f, mustKey(t, f).Fields())
}

func TestSortKeyRejectsOverflow(t *testing.T) {
	_, err := KeyFields{Program: MaxProgram + 1}.Key()
	assert.ErrorIs(t, err, core.ErrInvalidCommand)
	_, err = KeyFields{Pass: MaxPass + 1}.Key()
	assert.ErrorIs(t, err, core.ErrInvalidCommand)
	_, err = KeyFields{Depth: depthMask + 1}.Key()
	assert.ErrorIs(t, err, core.ErrInvalidCommand)
}

func TestQuantizeDepth(t *testing.T) {
	depths := []float32{0, 0.001, 0.01, 0.1, 0.25, 0.3, 0.5, 0.75, 0.9, 1}
	for i := 1; i < len(depths); i++ {
		assert.LessOrEqual(t, QuantizeDepth(depths[i-1]), QuantizeDepth(depths[i]), "%g vs %g", depths[i-1], depths[i])
	}
	assert.Less(t, QuantizeDepth(0.25), QuantizeDepth(0.5))
	assert.Less(t, QuantizeDepth(0.5), QuantizeDepth(1))
	assert.Equal(t, QuantizeDepth(0.5), QuantizeDepth(0.5000001))
	assert.Equal(t, uint16(0), QuantizeDepth(-3))
	assert.Equal(t, QuantizeDepth(1), QuantizeDepth(42))
	assert.LessOrEqual(t, QuantizeDepth(1), uint16(depthMask))
}

func TestDrawKeyDepthDirection(t *testing.T) {
	near, err := DrawKey(0, metadata.ViewLayerWorld, 1, 1, 0.1, metadata.TranslucencyOpaque, 0, false)
	require.NoError(t, err)
	far, err := DrawKey(0, metadata.ViewLayerWorld, 1, 1, 0.9, metadata.TranslucencyOpaque, 0, false)
	require.NoError(t, err)
	assert.Less(t, near, far, "opaque draws go front to back")

	near, err = DrawKey(0, metadata.ViewLayerWorld, 1, 1, 0.1, metadata.TranslucencyAlphaBlend, 0, false)
	require.NoError(t, err)
	far, err = DrawKey(0, metadata.ViewLayerWorld, 1, 1, 0.9, metadata.TranslucencyAlphaBlend, 0, false)
	require.NoError(t, err)
	assert.Less(t, far, near, "translucent draws go back to front")
}

func TestPassBracketKeys(t *testing.T) {
	begin, err := BeginPassKey(2)
	require.NoError(t, err)
	viewport, err := StateKey(2, metadata.ViewLayerBackground, KindSetViewport, 0)
	require.NoError(t, err)
	draw, err := DrawKey(2, metadata.ViewLayerOverlay, MaxProgram, MaxMaterial, 1, metadata.TranslucencyAlphaBlend, 255, true)
	require.NoError(t, err)
	end, err := EndPassKey(2)
	require.NoError(t, err)
	nextBegin, err := BeginPassKey(3)
	require.NoError(t, err)

	assert.Less(t, begin, viewport)
	assert.Less(t, viewport, draw)
	assert.Less(t, draw, end)
	assert.Less(t, end, nextBegin)

	last, err := EndPassKey(MaxPass - 1)
	require.NoError(t, err)
	assert.Less(t, last, PresentKey())
}
