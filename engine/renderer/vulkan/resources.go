package vulkan

import (
	"fmt"

	"github.com/spaghettifunk/anima-core/engine/containers"
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

// objectTable maps opaque metadata handles onto Vulkan objects of one kind.
type objectTable[T any] struct {
	kind string
	pool *containers.SlotPool[T]
}

func newObjectTable[T any](kind string) objectTable[T] {
	return objectTable[T]{kind: kind, pool: containers.NewSlotPool[T]()}
}

func (t objectTable[T]) add(v T) (uint64, error) {
	h, err := t.pool.Emplace(v)
	if err != nil {
		return metadata.NullHandle, fmt.Errorf("register %s: %w", t.kind, err)
	}
	return h.Key(), nil
}

func (t objectTable[T]) lookup(key uint64) (*T, error) {
	h, ok := containers.HandleFromKey[T](key)
	if !ok {
		return nil, fmt.Errorf("%w: %s handle %d", core.ErrUnknownResource, t.kind, key)
	}
	v, err := t.pool.Get(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %s handle %d: %w", core.ErrUnknownResource, t.kind, key, err)
	}
	return v, nil
}

func (t objectTable[T]) remove(key uint64) (T, error) {
	var zero T
	v, err := t.lookup(key)
	if err != nil {
		return zero, err
	}
	out := *v
	h, _ := containers.HandleFromKey[T](key)
	if err := t.pool.Free(h); err != nil {
		return zero, err
	}
	return out, nil
}

// ResourceTable resolves the handles carried by commands into the Vulkan
// objects the host created. Not safe for concurrent use.
type ResourceTable struct {
	buffers        objectTable[*VulkanBuffer]
	images         objectTable[*VulkanImage]
	pipelines      objectTable[*VulkanPipeline]
	descriptorSets objectTable[*VulkanDescriptorSet]
	framebuffers   objectTable[*VulkanFramebuffer]
}

func NewResourceTable() *ResourceTable {
	return &ResourceTable{
		buffers:        newObjectTable[*VulkanBuffer]("buffer"),
		images:         newObjectTable[*VulkanImage]("image"),
		pipelines:      newObjectTable[*VulkanPipeline]("pipeline"),
		descriptorSets: newObjectTable[*VulkanDescriptorSet]("descriptor set"),
		framebuffers:   newObjectTable[*VulkanFramebuffer]("framebuffer"),
	}
}

func (rt *ResourceTable) RegisterBuffer(b *VulkanBuffer) (metadata.BufferHandle, error) {
	key, err := rt.buffers.add(b)
	return metadata.BufferHandle(key), err
}

func (rt *ResourceTable) Buffer(h metadata.BufferHandle) (*VulkanBuffer, error) {
	b, err := rt.buffers.lookup(uint64(h))
	if err != nil {
		return nil, err
	}
	return *b, nil
}

func (rt *ResourceTable) RemoveBuffer(h metadata.BufferHandle) (*VulkanBuffer, error) {
	return rt.buffers.remove(uint64(h))
}

func (rt *ResourceTable) RegisterImage(img *VulkanImage) (metadata.TextureHandle, error) {
	key, err := rt.images.add(img)
	return metadata.TextureHandle(key), err
}

func (rt *ResourceTable) Image(h metadata.TextureHandle) (*VulkanImage, error) {
	img, err := rt.images.lookup(uint64(h))
	if err != nil {
		return nil, err
	}
	return *img, nil
}

func (rt *ResourceTable) RemoveImage(h metadata.TextureHandle) (*VulkanImage, error) {
	return rt.images.remove(uint64(h))
}

func (rt *ResourceTable) RegisterPipeline(p *VulkanPipeline) (metadata.PipelineHandle, error) {
	key, err := rt.pipelines.add(p)
	return metadata.PipelineHandle(key), err
}

func (rt *ResourceTable) Pipeline(h metadata.PipelineHandle) (*VulkanPipeline, error) {
	p, err := rt.pipelines.lookup(uint64(h))
	if err != nil {
		return nil, err
	}
	return *p, nil
}

func (rt *ResourceTable) RemovePipeline(h metadata.PipelineHandle) (*VulkanPipeline, error) {
	return rt.pipelines.remove(uint64(h))
}

// RegisterDescriptorSet records a set allocated against pipeline's layout.
// The pipeline must already be registered.
func (rt *ResourceTable) RegisterDescriptorSet(set *VulkanDescriptorSet) (metadata.DescriptorSetHandle, error) {
	if _, err := rt.Pipeline(set.Pipeline); err != nil {
		return metadata.NullHandle, fmt.Errorf("descriptor set layout: %w", err)
	}
	key, err := rt.descriptorSets.add(set)
	return metadata.DescriptorSetHandle(key), err
}

func (rt *ResourceTable) DescriptorSet(h metadata.DescriptorSetHandle) (*VulkanDescriptorSet, error) {
	s, err := rt.descriptorSets.lookup(uint64(h))
	if err != nil {
		return nil, err
	}
	return *s, nil
}

func (rt *ResourceTable) RemoveDescriptorSet(h metadata.DescriptorSetHandle) (*VulkanDescriptorSet, error) {
	return rt.descriptorSets.remove(uint64(h))
}

// RegisterFramebuffer records a framebuffer together with the render pass
// it was created for.
func (rt *ResourceTable) RegisterFramebuffer(fb *VulkanFramebuffer) (metadata.FramebufferHandle, error) {
	if fb.Renderpass == nil {
		return metadata.NullHandle, fmt.Errorf("framebuffer registered without a render pass")
	}
	key, err := rt.framebuffers.add(fb)
	return metadata.FramebufferHandle(key), err
}

func (rt *ResourceTable) Framebuffer(h metadata.FramebufferHandle) (*VulkanFramebuffer, error) {
	fb, err := rt.framebuffers.lookup(uint64(h))
	if err != nil {
		return nil, err
	}
	return *fb, nil
}

func (rt *ResourceTable) RemoveFramebuffer(h metadata.FramebufferHandle) (*VulkanFramebuffer, error) {
	return rt.framebuffers.remove(uint64(h))
}

func (rt *ResourceTable) Len() int {
	return rt.buffers.pool.Len() + rt.images.pool.Len() + rt.pipelines.pool.Len() + rt.descriptorSets.pool.Len() + rt.framebuffers.pool.Len()
}

// DestroyAll destroys every registered object and empties the table.
// Descriptor sets are returned to their pool by the host and only dropped.
func (rt *ResourceTable) DestroyAll(context *VulkanContext) {
	for _, fb := range rt.framebuffers.pool.All() {
		(*fb).Destroy(context)
	}
	for _, p := range rt.pipelines.pool.All() {
		(*p).Destroy(context)
	}
	for _, img := range rt.images.pool.All() {
		(*img).Destroy(context)
	}
	for _, b := range rt.buffers.pool.All() {
		(*b).Destroy(context)
	}
	rt.framebuffers.pool.Clear()
	rt.pipelines.pool.Clear()
	rt.images.pool.Clear()
	rt.buffers.pool.Clear()
	rt.descriptorSets.pool.Clear()
}
