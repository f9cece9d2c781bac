package metadata

import "github.com/spaghettifunk/anima-core/engine/math"

/** @brief The name of the default geometry. */
const DEFAULT_GEOMETRY_NAME string = "default"

type GeometryConfig struct {
	Name         string
	MaterialName string
	VertexSize   uint32
	VertexCount  uint32
	Vertices     []byte
	Indices      []uint32
	Center       math.Vec3
}

type Geometry struct {
	Name         string
	MaterialName string
	VertexBuffer BufferHandle
	IndexBuffer  BufferHandle
	VertexCount  uint32
	IndexCount   uint32
	// Local-space center, used for depth sorting.
	Center math.Vec3
}
