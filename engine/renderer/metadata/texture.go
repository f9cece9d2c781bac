package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default diffuse texture name. */
	DEFAULT_DIFFUSE_TEXTURE_NAME string = "default_DIFF"
)

type TextureFlag uint8

const (
	/** @brief Indicates if the texture has transparency. */
	TextureFlagHasTransparency TextureFlag = 0x1
	/** @brief Indicates if the texture can be written (rendered) to. */
	TextureFlagIsWriteable TextureFlag = 0x2
)

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The texture Name. */
	Name        string
	TextureType TextureType
	Width       uint32
	Height      uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	Flags        TextureFlag
	// Backend texture object.
	Device TextureHandle
}

// PixelSize is the byte length of a tightly packed pixel buffer for t.
func (t *Texture) PixelSize() int {
	return int(t.Width) * int(t.Height) * int(t.ChannelCount)
}

func (t *Texture) HasTransparency() bool {
	return t.Flags&TextureFlagHasTransparency != 0
}
