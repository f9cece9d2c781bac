package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Kind   metadata.BufferKind
	Size   uint64
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.Memory != nil {
		vk.FreeMemory(context.Device, vb.Memory, context.Allocator)
		vb.Memory = nil
	}
	if vb.Handle != nil {
		vk.DestroyBuffer(context.Device, vb.Handle, context.Allocator)
		vb.Handle = nil
	}
}

type VulkanDescriptorSet struct {
	Handle vk.DescriptorSet
	// Pipeline whose layout the set was allocated against.
	Pipeline metadata.PipelineHandle
}
