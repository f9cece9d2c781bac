package metadata

import (
	"github.com/spaghettifunk/anima-core/engine/math"
	"github.com/spaghettifunk/anima-core/engine/resources"
)

// RenderObject is an instance of a geometry drawn with a material. The IDs
// belong to the geometry and material systems' registries.
type RenderObject struct {
	Name     string
	Geometry resources.ID[Geometry]
	Material resources.ID[Material]
	Position math.Vec3
	// Views whose Mask intersects this value draw the object.
	ViewMask uint32
	Visible  bool
}
