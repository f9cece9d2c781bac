package commands

import (
	"testing"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(program uint16, pipeline metadata.PipelineHandle, material uint16, set metadata.DescriptorSetHandle) DrawMesh {
	return DrawMesh{
		Program:       program,
		Pipeline:      pipeline,
		Material:      material,
		DescriptorSet: set,
		VertexBuffer:  1,
		IndexBuffer:   2,
		IndexCount:    6,
	}
}

func TestCommandStreamSortsByKey(t *testing.T) {
	s := NewCommandStream(8)
	require.NoError(t, s.Emplace(PresentKey(), Present{}))
	end, _ := EndPassKey(0)
	require.NoError(t, s.Emplace(end, EndPass{Pass: 0}))
	drawKey, _ := DrawKey(0, metadata.ViewLayerWorld, 1, 1, 0.5, metadata.TranslucencyOpaque, 0, false)
	require.NoError(t, s.Emplace(drawKey, draw(1, 10, 1, 20)))
	begin, _ := BeginPassKey(0)
	require.NoError(t, s.Emplace(begin, BeginPass{Pass: 0, Framebuffer: 3}))

	ordered, err := s.Finalize()
	require.NoError(t, err)
	var kinds []Kind
	for _, c := range ordered {
		kinds = append(kinds, c.Kind())
	}
	assert.Equal(t, []Kind{KindBeginPass, KindDrawMesh, KindEndPass, KindPresent}, kinds)

	keys := s.Keys()
	for i := 1; i < len(keys); i++ {
		assert.LessOrEqual(t, keys[i-1], keys[i])
	}
}

func TestCommandStreamIsStable(t *testing.T) {
	s := NewCommandStream(0)
	key, err := DrawKey(1, metadata.ViewLayerWorld, 4, 4, 0.5, metadata.TranslucencyOpaque, 0, false)
	require.NoError(t, err)

	var want []Command
	for i := uint32(1); i <= 50; i++ {
		c := draw(4, 40, 4, 44)
		c.FirstIndex = i
		want = append(want, c)
		require.NoError(t, s.Emplace(key, c))
		// Interleave a lower key so the sort has work to do.
		lower, err := StateKey(1, metadata.ViewLayerWorld, KindSetViewport, 0)
		require.NoError(t, err)
		require.NoError(t, s.Emplace(lower, SetViewport{Viewport: metadata.Viewport{Width: 1, Height: 1}}))
	}

	ordered, err := s.Finalize()
	require.NoError(t, err)
	require.Len(t, ordered, 100)
	assert.Equal(t, want, ordered[50:])
}

func TestCommandStreamFinalizeOnce(t *testing.T) {
	s := NewCommandStream(2)
	require.NoError(t, s.Emplace(PresentKey(), Present{}))
	_, err := s.Finalize()
	require.NoError(t, err)

	_, err = s.Finalize()
	assert.ErrorIs(t, err, core.ErrStreamFinalized)
	assert.ErrorIs(t, s.Emplace(PresentKey(), Present{}), core.ErrStreamFinalized)

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Finalized())
	require.NoError(t, s.Emplace(PresentKey(), Present{}))
}

func TestCommandStreamRejectsInvalidCommands(t *testing.T) {
	s := NewCommandStream(2)
	cases := []Command{
		nil,
		BeginPass{Pass: 0},
		BeginPass{Pass: MaxPass, Framebuffer: 1},
		SetViewport{},
		BindShader{Program: 1},
		BindMaterial{Material: 1},
		DrawMesh{Pipeline: 1},
		DrawMesh{Pipeline: 1, VertexBuffer: 1},
		DrawMesh{Pipeline: 1, VertexBuffer: 1, IndexCount: 3},
	}
	for _, c := range cases {
		assert.ErrorIs(t, s.Emplace(0, c), core.ErrInvalidCommand, "%#v", c)
	}
	assert.Equal(t, 0, s.Len())
}
