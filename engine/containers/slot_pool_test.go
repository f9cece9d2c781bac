package containers

import (
	"testing"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotPoolReusesFreedSlot(t *testing.T) {
	p := NewSlotPool[string]()

	h0, err := p.Emplace("v0")
	require.NoError(t, err)
	h1, err := p.Emplace("v1")
	require.NoError(t, err)
	h2, err := p.Emplace("v2")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, []uint32{h0.Index(), h1.Index(), h2.Index()})

	require.NoError(t, p.Free(h1))
	h4, err := p.Emplace("v4")
	require.NoError(t, err)
	assert.Equal(t, h1, h4)
	assert.Equal(t, 3, p.SlotCount())
	assert.Equal(t, 3, p.Len())

	want := map[uint32]string{0: "v0", 2: "v2", 1: "v4"}
	got := map[uint32]string{}
	for h, v := range p.All() {
		got[h.Index()] = *v
	}
	assert.Equal(t, want, got)
}

func TestSlotPoolFreeListIsLIFO(t *testing.T) {
	p := NewSlotPool[int]()
	var hs []Handle[int]
	for i := 0; i < 6; i++ {
		h, err := p.Emplace(i)
		require.NoError(t, err)
		hs = append(hs, h)
	}

	freed := []Handle[int]{hs[1], hs[4], hs[2]}
	for _, h := range freed {
		require.NoError(t, p.Free(h))
	}

	for i := len(freed) - 1; i >= 0; i-- {
		h, err := p.Emplace(100 + i)
		require.NoError(t, err)
		assert.Equal(t, freed[i], h)
	}
	assert.Equal(t, 6, p.SlotCount())
}

func TestSlotPoolHandlesAreDistinctWhileLive(t *testing.T) {
	p := NewSlotPool[int]()
	live := map[Handle[int]]int{}
	for i := 0; i < 200; i++ {
		if i%3 == 2 {
			for h := range live {
				require.NoError(t, p.Free(h))
				delete(live, h)
				break
			}
			continue
		}
		h, err := p.Emplace(i)
		require.NoError(t, err)
		_, dup := live[h]
		require.False(t, dup, "handle %d handed out twice", h)
		live[h] = i
	}
	for h, v := range live {
		got, err := p.Get(h)
		require.NoError(t, err)
		assert.Equal(t, v, *got)
	}
	assert.Equal(t, len(live), p.Len())
}

func TestSlotPoolGetMutatesInPlace(t *testing.T) {
	p := NewSlotPool[[2]int]()
	h, err := p.Emplace([2]int{1, 2})
	require.NoError(t, err)

	v, err := p.Get(h)
	require.NoError(t, err)
	v[1] = 42

	v, err = p.Get(h)
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 42}, *v)
}

func TestSlotPoolErrors(t *testing.T) {
	p := NewSlotPool[int]()
	h, err := p.Emplace(7)
	require.NoError(t, err)

	_, err = p.Get(Handle[int](5))
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
	_, err = p.Get(InvalidHandle[int]())
	assert.ErrorIs(t, err, core.ErrInvalidHandle)

	require.NoError(t, p.Free(h))
	_, err = p.Get(h)
	assert.ErrorIs(t, err, core.ErrStaleHandle)
	assert.ErrorIs(t, p.Free(h), core.ErrStaleHandle)
	assert.False(t, p.Contains(h))
}

func TestFixedSlotPoolCapacity(t *testing.T) {
	p, err := NewFixedSlotPool[int](2)
	require.NoError(t, err)
	assert.True(t, p.IsFixed())
	assert.Equal(t, 0, p.SlotCount())

	a, err := p.Emplace(1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.SlotCount(), "slots materialise up to the high-water mark only")
	_, err = p.Emplace(2)
	require.NoError(t, err)

	h, err := p.Emplace(3)
	assert.ErrorIs(t, err, core.ErrCapacityExceeded)
	assert.False(t, h.IsValid())
	assert.Equal(t, 2, p.Len())

	require.NoError(t, p.Free(a))
	b, err := p.Emplace(4)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 2, p.SlotCount())
}

func TestNewFixedSlotPoolRejectsZero(t *testing.T) {
	_, err := NewFixedSlotPool[int](0)
	assert.Error(t, err)
}

func TestSlotPoolClear(t *testing.T) {
	p := NewSlotPool[int]()
	for i := 0; i < 4; i++ {
		_, err := p.Emplace(i)
		require.NoError(t, err)
	}
	p.Clear()
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, p.SlotCount())
	h, err := p.Emplace(9)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), h.Index())
}
