package vulkan

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
)

// PresentFunc hands a submitted frame to the swapchain. It is called from
// EndFrame when the frame contained a Present command.
type PresentFunc func(frame commands.FrameInfo) error

// CommandRecorder executes sorted command streams by recording them into
// Vulkan command buffers, one buffer per frame in flight.
type CommandRecorder struct {
	context   *VulkanContext
	resources *ResourceTable
	buffers   []*VulkanCommandBuffer
	fences    []*VulkanFence
	present   PresentFunc

	current  *VulkanCommandBuffer
	fence    *VulkanFence
	pass     *VulkanRenderpass
	pipeline *VulkanPipeline
	presents bool

	logger *log.Logger
}

var _ commands.Backend = (*CommandRecorder)(nil)

// NewCommandRecorder records into buffers round-robin by frame number. When
// fences are given there must be one per buffer; the recorder waits on a
// buffer's fence before reusing it and signals it on submit.
func NewCommandRecorder(context *VulkanContext, resources *ResourceTable, buffers []*VulkanCommandBuffer, fences []*VulkanFence, present PresentFunc) (*CommandRecorder, error) {
	if context == nil || resources == nil {
		return nil, fmt.Errorf("command recorder needs a context and a resource table")
	}
	if len(buffers) == 0 {
		return nil, fmt.Errorf("command recorder needs at least one command buffer")
	}
	if len(fences) != 0 && len(fences) != len(buffers) {
		return nil, fmt.Errorf("got %d fences for %d command buffers", len(fences), len(buffers))
	}
	return &CommandRecorder{
		context:   context,
		resources: resources,
		buffers:   buffers,
		fences:    fences,
		present:   present,
		logger:    core.Logger().With("component", "vulkan"),
	}, nil
}

func (r *CommandRecorder) BeginFrame(frame commands.FrameInfo) error {
	if r.current != nil {
		return fmt.Errorf("frame %d begun while another frame is recording", frame.Number)
	}
	index := frame.Number % uint64(len(r.buffers))
	cb := r.buffers[index]
	if cb.State == COMMAND_BUFFER_STATE_NOT_ALLOCATED {
		return fmt.Errorf("command buffer %d is not allocated", index)
	}

	if len(r.fences) > 0 {
		fence := r.fences[index]
		if err := fence.Wait(r.context, math.MaxUint64); err != nil {
			return err
		}
		r.fence = fence
	}

	cb.Reset()
	if err := cb.Begin(true, false, false); err != nil {
		return err
	}
	r.current = cb
	r.pass, r.pipeline, r.presents = nil, nil, false
	return nil
}

func (r *CommandRecorder) Execute(cmd commands.Command) error {
	if r.current == nil {
		return fmt.Errorf("execute %s outside of a frame", cmd.Kind())
	}
	cb := r.current

	switch c := cmd.(type) {
	case commands.BeginPass:
		if r.pass != nil {
			return fmt.Errorf("begin pass %d inside another pass", c.Pass)
		}
		fb, err := r.resources.Framebuffer(c.Framebuffer)
		if err != nil {
			return err
		}
		if err := fb.Renderpass.Begin(cb, fb, c.Width, c.Height, c.ClearColour); err != nil {
			return err
		}
		r.pass = fb.Renderpass
		r.pipeline = nil
	case commands.SetViewport:
		if err := cb.expect("set a viewport on", COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS); err != nil {
			return err
		}
		v := c.Viewport
		vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{{
			X:        v.X,
			Y:        v.Y,
			Width:    v.Width,
			Height:   v.Height,
			MinDepth: v.MinDepth,
			MaxDepth: v.MaxDepth,
		}})
		vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{{
			Offset: vk.Offset2D{X: int32(v.X), Y: int32(v.Y)},
			Extent: vk.Extent2D{Width: uint32(v.Width), Height: uint32(v.Height)},
		}})
	case commands.BindShader:
		pipeline, err := r.resources.Pipeline(c.Pipeline)
		if err != nil {
			return err
		}
		if err := cb.expect("bind a pipeline on", COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS); err != nil {
			return err
		}
		pipeline.Bind(cb, vk.PipelineBindPointGraphics)
		r.pipeline = pipeline
	case commands.BindMaterial:
		if r.pipeline == nil {
			return fmt.Errorf("bind material %d with no pipeline bound", c.Material)
		}
		set, err := r.resources.DescriptorSet(c.DescriptorSet)
		if err != nil {
			return err
		}
		r.pipeline.BindDescriptorSet(cb, vk.PipelineBindPointGraphics, set.Handle)
	case commands.DrawMesh:
		if r.pass == nil {
			return fmt.Errorf("draw outside of a render pass")
		}
		if r.pipeline == nil {
			return fmt.Errorf("draw with no pipeline bound")
		}
		vertices, err := r.resources.Buffer(c.VertexBuffer)
		if err != nil {
			return err
		}
		if c.IndexCount == 0 {
			vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{vertices.Handle}, []vk.DeviceSize{0})
			vk.CmdDraw(cb.Handle, c.VertexCount, c.Instances(), 0, 0)
			break
		}
		indices, err := r.resources.Buffer(c.IndexBuffer)
		if err != nil {
			return err
		}
		vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{vertices.Handle}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(cb.Handle, indices.Handle, 0, vk.IndexTypeUint32)
		vk.CmdDrawIndexed(cb.Handle, c.IndexCount, c.Instances(), c.FirstIndex, c.VertexOffset, 0)
	case commands.EndPass:
		if r.pass == nil {
			return fmt.Errorf("end pass %d without a matching begin", c.Pass)
		}
		if err := r.pass.End(cb); err != nil {
			return err
		}
		r.pass = nil
	case commands.Present:
		if r.pass != nil {
			return fmt.Errorf("present inside a render pass")
		}
		r.presents = true
	default:
		return fmt.Errorf("%w: unsupported command %T", core.ErrInvalidCommand, cmd)
	}
	return nil
}

// AbortFrame drops the frame being recorded. The buffer goes back to ready
// without being submitted and its fence stays signaled, so the next
// BeginFrame can reuse both.
func (r *CommandRecorder) AbortFrame(frame commands.FrameInfo) {
	if r.current == nil {
		return
	}
	r.current.Reset()
	r.current, r.fence = nil, nil
	r.pass, r.pipeline, r.presents = nil, nil, false
	r.logger.Warn("frame aborted", "frame", frame.ID, "number", frame.Number)
}

// EndFrame ends recording, submits the buffer to the graphics queue and,
// if the frame presented, hands it to the present callback.
func (r *CommandRecorder) EndFrame(frame commands.FrameInfo) error {
	if r.current == nil {
		return fmt.Errorf("end frame %d without a recording frame", frame.Number)
	}
	cb, fence := r.current, r.fence
	r.current, r.fence = nil, nil
	if r.pass != nil {
		r.pass = nil
		return fmt.Errorf("frame %d ended inside a render pass", frame.Number)
	}
	if err := cb.End(); err != nil {
		return err
	}

	signal := vk.NullFence
	if fence != nil {
		if err := fence.Reset(r.context); err != nil {
			return err
		}
		signal = fence.Handle
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.Handle},
	}
	if result := vk.QueueSubmit(r.context.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, signal); result != vk.Success {
		err := fmt.Errorf("vkQueueSubmit failed with result: %s", VulkanResultString(result, true))
		core.LogError(err.Error())
		return err
	}
	cb.UpdateSubmitted()
	r.logger.Debug("frame submitted", "frame", frame.ID, "number", frame.Number, "commands", frame.CommandCount)

	if r.presents && r.present != nil {
		return r.present(frame)
	}
	return nil
}
