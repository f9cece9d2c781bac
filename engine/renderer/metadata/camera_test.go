package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/anima-core/engine/math"
)

func TestCameraLinearDepth(t *testing.T) {
	c := NewCamera("test")
	assert.Equal(t, float32(0), c.LinearDepth(c.Position))
	assert.Equal(t, float32(1), c.LinearDepth(math.NewVec3(0, 0, -5000)))

	near := c.LinearDepth(math.NewVec3(0, 0, 0))
	far := c.LinearDepth(math.NewVec3(0, 0, -100))
	assert.Less(t, near, far)
	assert.InDelta(t, (10-0.1)/(1000-0.1), near, 1e-6)

	c.FarClip = c.NearClip
	assert.Equal(t, float32(0), c.LinearDepth(math.NewVec3(0, 0, -100)))
}

func TestTranslucency(t *testing.T) {
	assert.False(t, TranslucencyOpaque.IsTranslucent())
	assert.True(t, TranslucencyAdditive.IsTranslucent())
	assert.True(t, TranslucencyAlphaBlend.IsTranslucent())
	assert.Equal(t, "alpha_blend", TranslucencyAlphaBlend.String())
}
