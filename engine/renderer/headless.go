package renderer

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/anima-core/engine/containers"
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

type headlessTexture struct {
	name          string
	width, height uint32
}

type headlessBuffer struct {
	kind metadata.BufferKind
	size uint64
}

type headlessPipeline struct {
	shader string
}

type headlessDescriptorSet struct {
	pipeline metadata.PipelineHandle
	textures []metadata.TextureHandle
}

type headlessFramebuffer struct {
	name          string
	width, height uint32
}

// HeadlessStats counts what a HeadlessBackend executed since Initialize.
type HeadlessStats struct {
	Frames        uint64
	Passes        uint64
	Viewports     uint64
	ShaderBinds   uint64
	MaterialBinds uint64
	Draws         uint64
	Instances     uint64
	Presents      uint64
	Aborted       uint64
}

// HeadlessBackend is a RendererBackend without a GPU. Device objects live in
// slot pools and every command is checked against them, so it catches the
// same handle and ordering mistakes a real device would, and logs the
// stream at debug level.
type HeadlessBackend struct {
	textures       *containers.SlotPool[headlessTexture]
	buffers        *containers.SlotPool[headlessBuffer]
	pipelines      *containers.SlotPool[headlessPipeline]
	descriptorSets *containers.SlotPool[headlessDescriptorSet]
	framebuffers   *containers.SlotPool[headlessFramebuffer]

	inPass   bool
	pipeline metadata.PipelineHandle
	trace    []commands.Kind
	stats    HeadlessStats
	logger   *log.Logger
}

var _ RendererBackend = (*HeadlessBackend)(nil)

func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{
		textures:       containers.NewSlotPool[headlessTexture](),
		buffers:        containers.NewSlotPool[headlessBuffer](),
		pipelines:      containers.NewSlotPool[headlessPipeline](),
		descriptorSets: containers.NewSlotPool[headlessDescriptorSet](),
		framebuffers:   containers.NewSlotPool[headlessFramebuffer](),
		logger:         core.Logger().With("component", "headless"),
	}
}

func (hb *HeadlessBackend) Initialize(appName string) error {
	hb.stats = HeadlessStats{}
	hb.logger.Info("headless renderer initialized", "app", appName)
	return nil
}

// Shutdown reports any device objects still alive and drops them.
func (hb *HeadlessBackend) Shutdown() error {
	leaked := hb.textures.Len() + hb.buffers.Len() + hb.pipelines.Len() + hb.descriptorSets.Len() + hb.framebuffers.Len()
	if leaked > 0 {
		hb.logger.Warn("device objects alive at shutdown", "count", leaked)
	}
	hb.textures.Clear()
	hb.buffers.Clear()
	hb.pipelines.Clear()
	hb.descriptorSets.Clear()
	hb.framebuffers.Clear()
	return nil
}

func (hb *HeadlessBackend) CreateTexture(texture *metadata.Texture, pixels []uint8) (metadata.TextureHandle, error) {
	if texture == nil || texture.Width == 0 || texture.Height == 0 {
		return metadata.NullHandle, fmt.Errorf("texture must have a non-zero size")
	}
	want := texture.PixelSize()
	if len(pixels) > 0 && len(pixels) != want {
		return metadata.NullHandle, fmt.Errorf("texture '%s' expects %d bytes of pixels, got %d", texture.Name, want, len(pixels))
	}
	h, err := hb.textures.Emplace(headlessTexture{name: texture.Name, width: texture.Width, height: texture.Height})
	if err != nil {
		return metadata.NullHandle, err
	}
	return metadata.TextureHandle(h.Key()), nil
}

func (hb *HeadlessBackend) DestroyTexture(handle metadata.TextureHandle) error {
	return free(hb.textures, uint64(handle))
}

func (hb *HeadlessBackend) CreateBuffer(kind metadata.BufferKind, size uint64, data []byte) (metadata.BufferHandle, error) {
	if size == 0 {
		return metadata.NullHandle, fmt.Errorf("%s buffer must have a non-zero size", kind)
	}
	if uint64(len(data)) > size {
		return metadata.NullHandle, fmt.Errorf("%d bytes do not fit a %s buffer of %d bytes", len(data), kind, size)
	}
	h, err := hb.buffers.Emplace(headlessBuffer{kind: kind, size: size})
	if err != nil {
		return metadata.NullHandle, err
	}
	return metadata.BufferHandle(h.Key()), nil
}

func (hb *HeadlessBackend) DestroyBuffer(handle metadata.BufferHandle) error {
	return free(hb.buffers, uint64(handle))
}

func (hb *HeadlessBackend) CreatePipeline(shader *metadata.Shader) (metadata.PipelineHandle, error) {
	if shader == nil || len(shader.Stages) == 0 {
		return metadata.NullHandle, fmt.Errorf("pipeline needs at least one shader stage")
	}
	h, err := hb.pipelines.Emplace(headlessPipeline{shader: shader.Name})
	if err != nil {
		return metadata.NullHandle, err
	}
	return metadata.PipelineHandle(h.Key()), nil
}

func (hb *HeadlessBackend) DestroyPipeline(handle metadata.PipelineHandle) error {
	return free(hb.pipelines, uint64(handle))
}

func (hb *HeadlessBackend) CreateDescriptorSet(pipeline metadata.PipelineHandle, textures []metadata.TextureHandle) (metadata.DescriptorSetHandle, error) {
	if _, err := get(hb.pipelines, uint64(pipeline)); err != nil {
		return metadata.NullHandle, fmt.Errorf("descriptor set pipeline: %w", err)
	}
	for _, t := range textures {
		if _, err := get(hb.textures, uint64(t)); err != nil {
			return metadata.NullHandle, fmt.Errorf("descriptor set texture: %w", err)
		}
	}
	h, err := hb.descriptorSets.Emplace(headlessDescriptorSet{
		pipeline: pipeline,
		textures: append([]metadata.TextureHandle(nil), textures...),
	})
	if err != nil {
		return metadata.NullHandle, err
	}
	return metadata.DescriptorSetHandle(h.Key()), nil
}

func (hb *HeadlessBackend) DestroyDescriptorSet(handle metadata.DescriptorSetHandle) error {
	return free(hb.descriptorSets, uint64(handle))
}

func (hb *HeadlessBackend) CreateFramebuffer(name string, width, height uint32) (metadata.FramebufferHandle, error) {
	if width == 0 || height == 0 {
		return metadata.NullHandle, fmt.Errorf("framebuffer '%s' must have a non-zero size", name)
	}
	h, err := hb.framebuffers.Emplace(headlessFramebuffer{name: name, width: width, height: height})
	if err != nil {
		return metadata.NullHandle, err
	}
	return metadata.FramebufferHandle(h.Key()), nil
}

func (hb *HeadlessBackend) DestroyFramebuffer(handle metadata.FramebufferHandle) error {
	return free(hb.framebuffers, uint64(handle))
}

func (hb *HeadlessBackend) BeginFrame(frame commands.FrameInfo) error {
	hb.inPass = false
	hb.pipeline = metadata.NullHandle
	hb.trace = hb.trace[:0]
	hb.logger.Debug("begin frame", "frame", frame.ID, "number", frame.Number, "commands", frame.CommandCount)
	return nil
}

func (hb *HeadlessBackend) Execute(cmd commands.Command) error {
	switch c := cmd.(type) {
	case commands.BeginPass:
		if hb.inPass {
			return fmt.Errorf("begin pass %d inside another pass", c.Pass)
		}
		if _, err := get(hb.framebuffers, uint64(c.Framebuffer)); err != nil {
			return fmt.Errorf("pass %d framebuffer: %w", c.Pass, err)
		}
		hb.inPass = true
		hb.pipeline = metadata.NullHandle
		hb.stats.Passes++
	case commands.SetViewport:
		hb.stats.Viewports++
	case commands.BindShader:
		if _, err := get(hb.pipelines, uint64(c.Pipeline)); err != nil {
			return fmt.Errorf("bind program %d: %w", c.Program, err)
		}
		hb.pipeline = c.Pipeline
		hb.stats.ShaderBinds++
	case commands.BindMaterial:
		set, err := get(hb.descriptorSets, uint64(c.DescriptorSet))
		if err != nil {
			return fmt.Errorf("bind material %d: %w", c.Material, err)
		}
		if set.pipeline != hb.pipeline {
			return fmt.Errorf("material %d was created for another pipeline", c.Material)
		}
		hb.stats.MaterialBinds++
	case commands.DrawMesh:
		if !hb.inPass {
			return fmt.Errorf("draw outside of a pass")
		}
		if c.Pipeline != hb.pipeline {
			return fmt.Errorf("draw expects pipeline %d but %d is bound", c.Pipeline, hb.pipeline)
		}
		if _, err := get(hb.buffers, uint64(c.VertexBuffer)); err != nil {
			return fmt.Errorf("draw vertex buffer: %w", err)
		}
		if c.IndexCount > 0 {
			if _, err := get(hb.buffers, uint64(c.IndexBuffer)); err != nil {
				return fmt.Errorf("draw index buffer: %w", err)
			}
		}
		hb.stats.Draws++
		hb.stats.Instances += uint64(c.Instances())
	case commands.EndPass:
		if !hb.inPass {
			return fmt.Errorf("end pass %d without a matching begin", c.Pass)
		}
		hb.inPass = false
	case commands.Present:
		if hb.inPass {
			return fmt.Errorf("present inside a pass")
		}
		hb.stats.Presents++
	default:
		return fmt.Errorf("%w: unsupported command %T", core.ErrInvalidCommand, cmd)
	}
	hb.trace = append(hb.trace, cmd.Kind())
	hb.logger.Debug("execute", "kind", cmd.Kind())
	return nil
}

// AbortFrame drops a partially executed frame.
func (hb *HeadlessBackend) AbortFrame(frame commands.FrameInfo) {
	hb.inPass = false
	hb.pipeline = metadata.NullHandle
	hb.stats.Aborted++
	hb.logger.Warn("frame aborted", "frame", frame.ID, "number", frame.Number, "executed", len(hb.trace))
}

func (hb *HeadlessBackend) EndFrame(frame commands.FrameInfo) error {
	if hb.inPass {
		return fmt.Errorf("frame %d ended inside a pass", frame.Number)
	}
	hb.stats.Frames++
	hb.logger.Debug("end frame", "frame", frame.ID, "number", frame.Number, "executed", len(hb.trace))
	return nil
}

func (hb *HeadlessBackend) Stats() HeadlessStats {
	return hb.stats
}

// Trace returns the kinds executed in the current or last frame, in order.
func (hb *HeadlessBackend) Trace() []commands.Kind {
	return append([]commands.Kind(nil), hb.trace...)
}

// Live returns the number of device objects currently alive.
func (hb *HeadlessBackend) Live() int {
	return hb.textures.Len() + hb.buffers.Len() + hb.pipelines.Len() + hb.descriptorSets.Len() + hb.framebuffers.Len()
}

func get[T any](pool *containers.SlotPool[T], key uint64) (*T, error) {
	h, ok := containers.HandleFromKey[T](key)
	if !ok {
		return nil, fmt.Errorf("%w: device handle %d", core.ErrUnknownResource, key)
	}
	v, err := pool.Get(h)
	if err != nil {
		return nil, fmt.Errorf("%w: device handle %d: %w", core.ErrUnknownResource, key, err)
	}
	return v, nil
}

func free[T any](pool *containers.SlotPool[T], key uint64) error {
	h, ok := containers.HandleFromKey[T](key)
	if !ok {
		return fmt.Errorf("%w: device handle %d", core.ErrUnknownResource, key)
	}
	if err := pool.Free(h); err != nil {
		return fmt.Errorf("%w: device handle %d: %w", core.ErrUnknownResource, key, err)
	}
	return nil
}
