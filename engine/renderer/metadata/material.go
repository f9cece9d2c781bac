package metadata

import (
	"github.com/spaghettifunk/anima-core/engine/math"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

/** @brief The name of the default material. */
const DEFAULT_MATERIAL_NAME string = "default"

// Translucency orders blending classes within a bucket. Opaque geometry
// draws first, then additive, then alpha-blended.
type Translucency uint8

const (
	TranslucencyOpaque Translucency = iota
	TranslucencyAdditive
	TranslucencyAlphaBlend
)

func (t Translucency) String() string {
	switch t {
	case TranslucencyOpaque:
		return "opaque"
	case TranslucencyAdditive:
		return "additive"
	case TranslucencyAlphaBlend:
		return "alpha_blend"
	}
	return "unknown"
}

// IsTranslucent reports whether geometry of this class must be drawn back to front.
func (t Translucency) IsTranslucent() bool {
	return t != TranslucencyOpaque
}

type MaterialConfig struct {
	Name          string
	ShaderName    string
	DiffuseMap    string
	DiffuseColour math.Vec4
	Translucency  Translucency
}

type Material struct {
	Name          string
	ShaderName    string
	DiffuseMap    string
	DiffuseColour math.Vec4
	Translucency  Translucency
	Shader        resources.ID[Shader]
	// Owned reference on the diffuse texture, released with the material.
	DiffuseTexture *resources.Ref[Texture]
	// Per-instance resources bound when the material is applied.
	DescriptorSet DescriptorSetHandle
}
