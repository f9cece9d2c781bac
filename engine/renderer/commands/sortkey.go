package commands

import (
	"fmt"
	gomath "math"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/math"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

// SortKey orders commands in a stream. Fields are packed from the most to the
// least significant bit so that comparing keys as integers compares fields
// lexicographically:
//
//	63      58 57   55 54  51 50      39 38       23 22    13 12   10 9      2  1   0
//	|  pass  | layer |kind | program  | material  |  depth  | transl | vport |fs|rsv|
//	    6        3      4      12          16          10        3       8     1   1
type SortKey uint64

const (
	passBits         = 6
	layerBits        = 3
	kindBits         = 4
	programBits      = 12
	materialBits     = 16
	depthBits        = 10
	translucencyBits = 3
	viewportBits     = 8
	fullscreenBits   = 1

	fullscreenShift   = 1
	viewportShift     = fullscreenShift + fullscreenBits
	translucencyShift = viewportShift + viewportBits
	depthShift        = translucencyShift + translucencyBits
	materialShift     = depthShift + depthBits
	programShift      = materialShift + materialBits
	kindShift         = programShift + programBits
	layerShift        = kindShift + kindBits
	passShift         = layerShift + layerBits

	passMask         = 1<<passBits - 1
	layerMask        = 1<<layerBits - 1
	kindMask         = 1<<kindBits - 1
	programMask      = 1<<programBits - 1
	materialMask     = 1<<materialBits - 1
	depthMask        = 1<<depthBits - 1
	translucencyMask = 1<<translucencyBits - 1
	viewportMask     = 1<<viewportBits - 1

	// Largest representable pass and layer, used for trailing commands.
	MaxPass  = passMask
	MaxLayer = layerMask
	// MaxProgram and MaxMaterial bound the ids that fit a key.
	MaxProgram  = programMask
	MaxMaterial = materialMask
)

// KeyFields is the unpacked form of a SortKey. Depth is already quantized.
type KeyFields struct {
	Pass         uint8
	Layer        metadata.ViewLayer
	Kind         Kind
	Program      uint16
	Material     uint16
	Depth        uint16
	Translucency metadata.Translucency
	Viewport     uint8
	Fullscreen   bool
}

// Key packs the fields, failing if any of them does not fit its bit range.
func (f KeyFields) Key() (SortKey, error) {
	checks := []struct {
		name  string
		value uint64
		mask  uint64
	}{
		{"pass", uint64(f.Pass), passMask},
		{"layer", uint64(f.Layer), layerMask},
		{"kind", uint64(f.Kind), kindMask},
		{"program", uint64(f.Program), programMask},
		{"material", uint64(f.Material), materialMask},
		{"depth", uint64(f.Depth), depthMask},
		{"translucency", uint64(f.Translucency), translucencyMask},
	}
	for _, c := range checks {
		if c.value > c.mask {
			return 0, fmt.Errorf("%w: sort key %s %d exceeds %d", core.ErrInvalidCommand, c.name, c.value, c.mask)
		}
	}

	k := uint64(f.Pass)<<passShift |
		uint64(f.Layer)<<layerShift |
		uint64(f.Kind)<<kindShift |
		uint64(f.Program)<<programShift |
		uint64(f.Material)<<materialShift |
		uint64(f.Depth)<<depthShift |
		uint64(f.Translucency)<<translucencyShift |
		uint64(f.Viewport)<<viewportShift
	if f.Fullscreen {
		k |= 1 << fullscreenShift
	}
	return SortKey(k), nil
}

// Fields unpacks k.
func (k SortKey) Fields() KeyFields {
	v := uint64(k)
	return KeyFields{
		Pass:         uint8(v >> passShift & passMask),
		Layer:        metadata.ViewLayer(v >> layerShift & layerMask),
		Kind:         Kind(v >> kindShift & kindMask),
		Program:      uint16(v >> programShift & programMask),
		Material:     uint16(v >> materialShift & materialMask),
		Depth:        uint16(v >> depthShift & depthMask),
		Translucency: metadata.Translucency(v >> translucencyShift & translucencyMask),
		Viewport:     uint8(v >> viewportShift & viewportMask),
		Fullscreen:   v>>fullscreenShift&1 == 1,
	}
}

func (k SortKey) String() string {
	f := k.Fields()
	return fmt.Sprintf("pass=%d layer=%d kind=%s program=%d material=%d depth=%d transl=%s vp=%d fs=%t",
		f.Pass, f.Layer, f.Kind, f.Program, f.Material, f.Depth, f.Translucency, f.Viewport, f.Fullscreen)
}

// QuantizeDepth maps a normalized depth to 10 bits. The depth is clamped to
// [0, 1] and bits 29..20 of its float32 encoding are kept: the low exponent
// bits and the top of the mantissa. For non-negative floats below 2 the bit
// pattern is monotonic, so the result orders like the input while nearly
// equal depths collapse into one bucket.
func QuantizeDepth(depth float32) uint16 {
	d := math.Saturate(depth)
	return uint16(gomath.Float32bits(d) >> 20 & depthMask)
}

// DrawKey composes the key of a draw. Opaque classes sort front to back;
// translucent classes sort back to front.
func DrawKey(pass uint8, layer metadata.ViewLayer, program, material uint16, depth float32, translucency metadata.Translucency, viewport uint8, fullscreen bool) (SortKey, error) {
	q := QuantizeDepth(depth)
	if translucency.IsTranslucent() {
		q = depthMask - q
	}
	return KeyFields{
		Pass:         pass,
		Layer:        layer,
		Kind:         KindDrawMesh,
		Program:      program,
		Material:     material,
		Depth:        q,
		Translucency: translucency,
		Viewport:     viewport,
		Fullscreen:   fullscreen,
	}.Key()
}

// StateKey composes the key of a state command applying to one layer of a
// pass. It sorts ahead of every draw in that layer.
func StateKey(pass uint8, layer metadata.ViewLayer, kind Kind, viewport uint8) (SortKey, error) {
	return KeyFields{Pass: pass, Layer: layer, Kind: kind, Viewport: viewport}.Key()
}

// BeginPassKey sorts ahead of everything else in the pass.
func BeginPassKey(pass uint8) (SortKey, error) {
	return KeyFields{Pass: pass, Kind: KindBeginPass}.Key()
}

// EndPassKey sorts after everything else in the pass.
func EndPassKey(pass uint8) (SortKey, error) {
	return KeyFields{Pass: pass, Layer: MaxLayer, Kind: KindEndPass}.Key()
}

// PresentKey sorts after every pass.
func PresentKey() SortKey {
	return SortKey(uint64(MaxPass)<<passShift | uint64(MaxLayer)<<layerShift | uint64(KindPresent)<<kindShift)
}
