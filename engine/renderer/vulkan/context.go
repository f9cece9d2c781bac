package vulkan

import vk "github.com/goki/vulkan"

// VulkanContext holds the device objects the recorder works with. Instance,
// device and swapchain creation belong to the host application, which fills
// this in once the logical device exists.
type VulkanContext struct {
	Device    vk.Device
	Allocator *vk.AllocationCallbacks

	GraphicsQueue vk.Queue
	CommandPool   vk.CommandPool
}
