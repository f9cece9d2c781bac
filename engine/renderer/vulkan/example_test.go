package vulkan_test

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-core/engine"
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer"
	"github.com/spaghettifunk/anima-core/engine/renderer/vulkan"
)

// A CommandRecorder executes the engine's frames on a device the application
// created. The allocator handed to engine.New must register the objects it
// creates in the same ResourceTable so the recorder can resolve them.
func ExampleCommandRecorder() {
	var (
		device    vk.Device
		queue     vk.Queue
		pool      vk.CommandPool
		allocator renderer.RendererBackend
		game      *engine.Game
	)
	context := &vulkan.VulkanContext{Device: device, GraphicsQueue: queue, CommandPool: pool}
	table := vulkan.NewResourceTable()

	// two frames in flight
	var (
		buffers []*vulkan.VulkanCommandBuffer
		fences  []*vulkan.VulkanFence
	)
	for i := 0; i < 2; i++ {
		cb, err := vulkan.NewVulkanCommandBuffer(context, true)
		if err != nil {
			core.LogFatal(err.Error())
		}
		fence, err := vulkan.NewFence(context, true)
		if err != nil {
			core.LogFatal(err.Error())
		}
		buffers = append(buffers, cb)
		fences = append(fences, fence)
	}

	recorder, err := vulkan.NewCommandRecorder(context, table, buffers, fences, nil)
	if err != nil {
		core.LogFatal(err.Error())
	}
	e, err := engine.New(game, core.DefaultEngineConfig(), allocator, engine.WithCommandBackend(recorder))
	if err != nil {
		core.LogFatal(err.Error())
	}
	defer e.Shutdown()
}
