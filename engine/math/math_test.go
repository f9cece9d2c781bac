package math

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(5, 0, 3))
	assert.Equal(t, 0, Clamp(-1, 0, 3))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}

func TestSaturate(t *testing.T) {
	assert.Equal(t, float32(1), Saturate(float32(7)))
	assert.Equal(t, float32(0), Saturate(float32(-2)))
	assert.Equal(t, float32(0), Saturate(float32(gomath.NaN())))
}

func TestVec3Distance(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 6, 3)
	assert.InDelta(t, 5.0, float64(a.Distance(b)), 1e-6)
	assert.True(t, a.Add(b).Sub(b).Compare(a, 1e-6))
	assert.Equal(t, float32(25), b.Sub(a).LengthSquared())
	assert.Equal(t, float32(0), NewVec3Zero().Dot(a))
}
