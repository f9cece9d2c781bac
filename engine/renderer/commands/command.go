package commands

import (
	"fmt"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/math"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

// Kind tags a command record. Its value is part of the sort key: state
// setting kinds are lower than the draws they configure.
type Kind uint8

const (
	KindBeginPass Kind = iota
	KindSetViewport
	KindBindShader
	KindBindMaterial
	KindDrawMesh
	KindEndPass
	KindPresent

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindBeginPass:
		return "begin_pass"
	case KindSetViewport:
		return "set_viewport"
	case KindBindShader:
		return "bind_shader"
	case KindBindMaterial:
		return "bind_material"
	case KindDrawMesh:
		return "draw_mesh"
	case KindEndPass:
		return "end_pass"
	case KindPresent:
		return "present"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Command is one record of a CommandStream. The set of implementations is
// closed; records are plain values and are not modified after recording.
type Command interface {
	Kind() Kind
	validate() error
}

type BeginPass struct {
	Pass        uint8
	Name        string
	Framebuffer metadata.FramebufferHandle
	Width       uint32
	Height      uint32
	ClearColour math.Vec4
	ClearDepth  bool
}

type SetViewport struct {
	ViewportID uint8
	Viewport   metadata.Viewport
}

type BindShader struct {
	Program  uint16
	Pipeline metadata.PipelineHandle
}

type BindMaterial struct {
	Material      uint16
	DescriptorSet metadata.DescriptorSetHandle
}

// DrawMesh carries the program and material it needs; the scheduler only
// emits binds when they differ from what is already bound.
type DrawMesh struct {
	Program       uint16
	Pipeline      metadata.PipelineHandle
	Material      uint16
	DescriptorSet metadata.DescriptorSetHandle
	VertexBuffer  metadata.BufferHandle
	IndexBuffer   metadata.BufferHandle
	VertexCount   uint32
	IndexCount    uint32
	FirstIndex    uint32
	VertexOffset  int32
	InstanceCount uint32
}

type EndPass struct {
	Pass uint8
}

type Present struct{}

func (BeginPass) Kind() Kind    { return KindBeginPass }
func (SetViewport) Kind() Kind  { return KindSetViewport }
func (BindShader) Kind() Kind   { return KindBindShader }
func (BindMaterial) Kind() Kind { return KindBindMaterial }
func (DrawMesh) Kind() Kind     { return KindDrawMesh }
func (EndPass) Kind() Kind      { return KindEndPass }
func (Present) Kind() Kind      { return KindPresent }

func (c BeginPass) validate() error {
	if c.Framebuffer == metadata.NullHandle {
		return fmt.Errorf("%w: begin pass %d without framebuffer", core.ErrInvalidCommand, c.Pass)
	}
	if c.Pass >= MaxPass {
		return fmt.Errorf("%w: pass index %d out of range, %d is reserved for present", core.ErrInvalidCommand, c.Pass, MaxPass)
	}
	return nil
}

func (c SetViewport) validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("%w: empty viewport %gx%g", core.ErrInvalidCommand, c.Viewport.Width, c.Viewport.Height)
	}
	return nil
}

func (c BindShader) validate() error {
	if c.Pipeline == metadata.NullHandle {
		return fmt.Errorf("%w: bind shader %d without pipeline", core.ErrInvalidCommand, c.Program)
	}
	return nil
}

func (c BindMaterial) validate() error {
	if c.DescriptorSet == metadata.NullHandle {
		return fmt.Errorf("%w: bind material %d without descriptor set", core.ErrInvalidCommand, c.Material)
	}
	return nil
}

func (c DrawMesh) validate() error {
	if c.Pipeline == metadata.NullHandle {
		return fmt.Errorf("%w: draw without pipeline", core.ErrInvalidCommand)
	}
	if c.VertexBuffer == metadata.NullHandle {
		return fmt.Errorf("%w: draw without vertex buffer", core.ErrInvalidCommand)
	}
	if c.IndexCount == 0 && c.VertexCount == 0 {
		return fmt.Errorf("%w: draw with no vertices", core.ErrInvalidCommand)
	}
	if c.IndexCount > 0 && c.IndexBuffer == metadata.NullHandle {
		return fmt.Errorf("%w: indexed draw without index buffer", core.ErrInvalidCommand)
	}
	return nil
}

func (EndPass) validate() error { return nil }
func (Present) validate() error { return nil }

// Instances returns the instance count, treating 0 as 1.
func (c DrawMesh) Instances() uint32 {
	if c.InstanceCount == 0 {
		return 1
	}
	return c.InstanceCount
}
