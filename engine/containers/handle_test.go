package containers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleKey(t *testing.T) {
	h := Handle[int](0)
	assert.Equal(t, uint64(1), h.Key())

	back, ok := HandleFromKey[int](h.Key())
	assert.True(t, ok)
	assert.Equal(t, h, back)

	last := Handle[int](math.MaxUint32 - 1)
	back, ok = HandleFromKey[int](last.Key())
	assert.True(t, ok)
	assert.Equal(t, last, back)

	_, ok = HandleFromKey[int](0)
	assert.False(t, ok)
	_, ok = HandleFromKey[int](uint64(math.MaxUint32) + 1)
	assert.False(t, ok)
	assert.False(t, InvalidHandle[int]().IsValid())
}
