package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-core/engine/math"
)

// VulkanRenderpass wraps a render pass created by the host together with
// the clear values used when it begins.
type VulkanRenderpass struct {
	Handle  vk.RenderPass
	Depth   float32
	Stencil uint32
}

func (vr *VulkanRenderpass) Destroy(context *VulkanContext) {
	if vr.Handle != nil {
		vk.DestroyRenderPass(context.Device, vr.Handle, context.Allocator)
		vr.Handle = nil
	}
}

// Begin starts the pass on commandBuffer, rendering into framebuffer over
// the given area.
func (vr *VulkanRenderpass) Begin(commandBuffer *VulkanCommandBuffer, framebuffer *VulkanFramebuffer, width, height uint32, clear math.Vec4) error {
	if err := commandBuffer.expect("begin a render pass on", COMMAND_BUFFER_STATE_RECORDING); err != nil {
		return err
	}
	if width == 0 || height == 0 {
		width, height = framebuffer.Width, framebuffer.Height
	}

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: framebuffer.Handle,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{
				Width:  width,
				Height: height,
			},
		},
	}

	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor([]float32{clear.X, clear.Y, clear.Z, clear.W})
	clearValues[1].SetDepthStencil(vr.Depth, vr.Stencil)

	beginInfo.ClearValueCount = 2
	beginInfo.PClearValues = clearValues

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
	return nil
}

func (vr *VulkanRenderpass) End(commandBuffer *VulkanCommandBuffer) error {
	if commandBuffer.State != COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		return fmt.Errorf("end render pass on a command buffer in state %s", commandBuffer.State)
	}
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}
