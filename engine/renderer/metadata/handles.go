package metadata

// Device handles are opaque values minted by the rendering backend. The core
// stores and forwards them but never interprets their bits. 0 is the null
// handle for every kind.
type (
	BufferHandle        uint64
	TextureHandle       uint64
	PipelineHandle      uint64
	DescriptorSetHandle uint64
	FramebufferHandle   uint64
)

const NullHandle = 0

type BufferKind int

const (
	/** @brief Buffer is used for vertex data. */
	BufferKindVertex BufferKind = iota
	/** @brief Buffer is used for index data. */
	BufferKindIndex
	/** @brief Buffer is used for uniform data. */
	BufferKindUniform
)

func (k BufferKind) String() string {
	switch k {
	case BufferKindVertex:
		return "vertex"
	case BufferKindIndex:
		return "index"
	case BufferKindUniform:
		return "uniform"
	}
	return "unknown"
}

// DeviceAllocator is the slice of the rendering backend the resource systems
// need: creating and destroying device objects and handing back handles.
type DeviceAllocator interface {
	CreateTexture(texture *Texture, pixels []uint8) (TextureHandle, error)
	DestroyTexture(handle TextureHandle) error
	CreateBuffer(kind BufferKind, size uint64, data []byte) (BufferHandle, error)
	DestroyBuffer(handle BufferHandle) error
	CreatePipeline(shader *Shader) (PipelineHandle, error)
	DestroyPipeline(handle PipelineHandle) error
	CreateDescriptorSet(pipeline PipelineHandle, textures []TextureHandle) (DescriptorSetHandle, error)
	DestroyDescriptorSet(handle DescriptorSetHandle) error
	CreateFramebuffer(name string, width, height uint32) (FramebufferHandle, error)
	DestroyFramebuffer(handle FramebufferHandle) error
}
