package testbed

import (
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

const proceduralSize uint32 = 64

// proceduralTexture generates the testbed textures in memory so the demo runs
// without an asset directory.
func proceduralTexture(name string) (metadata.Texture, []uint8, error) {
	texture := metadata.Texture{
		TextureType:  metadata.TextureType2d,
		Width:        proceduralSize,
		Height:       proceduralSize,
		ChannelCount: 4,
	}
	pixels := make([]uint8, proceduralSize*proceduralSize*4)
	var shade func(x, y uint32) [4]uint8
	switch name {
	case "cobblestone":
		shade = func(x, y uint32) [4]uint8 {
			v := uint8(96 + (x/8+y/8)%2*64)
			return [4]uint8{v, v, v, 0xFF}
		}
	case "paving":
		shade = func(x, y uint32) [4]uint8 {
			if x%16 == 0 || y%16 == 0 {
				return [4]uint8{40, 40, 40, 0xFF}
			}
			return [4]uint8{180, 170, 150, 0xFF}
		}
	case "glass":
		texture.Flags |= metadata.TextureFlagHasTransparency
		shade = func(x, y uint32) [4]uint8 {
			return [4]uint8{160, 200, 255, 96}
		}
	default:
		return metadata.Texture{}, nil, core.ErrUnknownResource
	}
	for y := uint32(0); y < proceduralSize; y++ {
		for x := uint32(0); x < proceduralSize; x++ {
			p := shade(x, y)
			copy(pixels[(y*proceduralSize+x)*4:], p[:])
		}
	}
	return texture, pixels, nil
}
