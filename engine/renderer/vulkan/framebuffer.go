package vulkan

import vk "github.com/goki/vulkan"

type VulkanFramebuffer struct {
	Handle     vk.Framebuffer
	Renderpass *VulkanRenderpass
	Width      uint32
	Height     uint32
}

func (vfb *VulkanFramebuffer) Destroy(context *VulkanContext) {
	if vfb.Handle != nil {
		vk.DestroyFramebuffer(context.Device, vfb.Handle, context.Allocator)
	}
	vfb.Handle = nil
	vfb.Renderpass = nil
}
