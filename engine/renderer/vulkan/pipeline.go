package vulkan

import vk "github.com/goki/vulkan"

/**
 * @brief Holds a Vulkan pipeline and its layout.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
	/** @brief The pipeline layout. */
	PipelineLayout vk.PipelineLayout
}

func (pipeline *VulkanPipeline) Destroy(context *VulkanContext) {
	if pipeline.Handle != nil {
		vk.DestroyPipeline(context.Device, pipeline.Handle, context.Allocator)
		pipeline.Handle = nil
	}
	if pipeline.PipelineLayout != nil {
		vk.DestroyPipelineLayout(context.Device, pipeline.PipelineLayout, context.Allocator)
		pipeline.PipelineLayout = nil
	}
}

func (pipeline *VulkanPipeline) Bind(commandBuffer *VulkanCommandBuffer, bindPoint vk.PipelineBindPoint) {
	vk.CmdBindPipeline(commandBuffer.Handle, bindPoint, pipeline.Handle)
}

// BindDescriptorSet binds set at index 0 using this pipeline's layout.
func (pipeline *VulkanPipeline) BindDescriptorSet(commandBuffer *VulkanCommandBuffer, bindPoint vk.PipelineBindPoint, set vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(commandBuffer.Handle, bindPoint, pipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{set}, 0, nil)
}
