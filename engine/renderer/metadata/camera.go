package metadata

import "github.com/spaghettifunk/anima-core/engine/math"

const DEFAULT_CAMERA_NAME string = "default"

type Camera struct {
	Name     string
	Position math.Vec3
	NearClip float32
	FarClip  float32
}

func NewCamera(name string) Camera {
	return Camera{
		Name:     name,
		Position: math.NewVec3(0, 0, 10),
		NearClip: 0.1,
		FarClip:  1000,
	}
}

// LinearDepth maps the distance from the camera to p onto [0,1] of the
// clip range. Points outside the range are clamped.
func (c *Camera) LinearDepth(p math.Vec3) float32 {
	span := c.FarClip - c.NearClip
	if span <= 0 {
		return 0
	}
	return math.Saturate((c.Position.Distance(p) - c.NearClip) / span)
}
