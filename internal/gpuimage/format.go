package gpuimage

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ChannelKind classifies the per-channel numeric representation used
// when binding buffer memory to a texture.
type ChannelKind int

const (
	// KindUnsigned for unsigned integer channels.
	KindUnsigned ChannelKind = iota
	// KindSigned for signed integer channels.
	KindSigned
	// KindFloat for floating-point channels.
	KindFloat
)

// String returns a human-readable channel kind name.
func (k ChannelKind) String() string {
	switch k {
	case KindUnsigned:
		return "Unsigned"
	case KindSigned:
		return "Signed"
	case KindFloat:
		return "Float"
	default:
		return "Unknown"
	}
}

// ReadMode selects how kernels observe sampled values.
type ReadMode int

const (
	// ReadElement reads raw element-typed values.
	ReadElement ReadMode = iota
	// ReadNormalizedFloat reads integer channels normalized to [0, 1]
	// (or [-1, 1] for signed) floating point.
	ReadNormalizedFloat
)

// String returns a human-readable read mode name.
func (m ReadMode) String() string {
	switch m {
	case ReadElement:
		return "Element"
	case ReadNormalizedFloat:
		return "NormalizedFloat"
	default:
		return "Unknown"
	}
}

// formatKey identifies a channel layout + sampling configuration.
type formatKey struct {
	depth    int
	itemSize int
	kind     ChannelKind
	read     ReadMode
}

// textureFormats maps supported channel layouts to platform texture
// formats. Per-channel bit width is uniformly 8*itemSize across the
// depth channels present. Layouts absent from the table (for example
// any depth-3 layout: WebGPU has no 3-channel formats) are rejected
// with ErrTextureFormat. Floating-point channels sample identically
// under both read modes.
var textureFormats = map[formatKey]gputypes.TextureFormat{
	// 8-bit channels
	{1, 1, KindUnsigned, ReadElement}:         gputypes.TextureFormatR8Uint,
	{1, 1, KindUnsigned, ReadNormalizedFloat}: gputypes.TextureFormatR8Unorm,
	{1, 1, KindSigned, ReadElement}:           gputypes.TextureFormatR8Sint,
	{1, 1, KindSigned, ReadNormalizedFloat}:   gputypes.TextureFormatR8Snorm,
	{2, 1, KindUnsigned, ReadElement}:         gputypes.TextureFormatRG8Uint,
	{2, 1, KindUnsigned, ReadNormalizedFloat}: gputypes.TextureFormatRG8Unorm,
	{2, 1, KindSigned, ReadElement}:           gputypes.TextureFormatRG8Sint,
	{2, 1, KindSigned, ReadNormalizedFloat}:   gputypes.TextureFormatRG8Snorm,
	{4, 1, KindUnsigned, ReadElement}:         gputypes.TextureFormatRGBA8Uint,
	{4, 1, KindUnsigned, ReadNormalizedFloat}: gputypes.TextureFormatRGBA8Unorm,
	{4, 1, KindSigned, ReadElement}:           gputypes.TextureFormatRGBA8Sint,
	{4, 1, KindSigned, ReadNormalizedFloat}:   gputypes.TextureFormatRGBA8Snorm,

	// 16-bit channels
	{1, 2, KindUnsigned, ReadElement}:      gputypes.TextureFormatR16Uint,
	{1, 2, KindSigned, ReadElement}:        gputypes.TextureFormatR16Sint,
	{1, 2, KindFloat, ReadElement}:         gputypes.TextureFormatR16Float,
	{1, 2, KindFloat, ReadNormalizedFloat}: gputypes.TextureFormatR16Float,
	{2, 2, KindUnsigned, ReadElement}:      gputypes.TextureFormatRG16Uint,
	{2, 2, KindSigned, ReadElement}:        gputypes.TextureFormatRG16Sint,
	{2, 2, KindFloat, ReadElement}:         gputypes.TextureFormatRG16Float,
	{2, 2, KindFloat, ReadNormalizedFloat}: gputypes.TextureFormatRG16Float,
	{4, 2, KindUnsigned, ReadElement}:      gputypes.TextureFormatRGBA16Uint,
	{4, 2, KindSigned, ReadElement}:        gputypes.TextureFormatRGBA16Sint,
	{4, 2, KindFloat, ReadElement}:         gputypes.TextureFormatRGBA16Float,
	{4, 2, KindFloat, ReadNormalizedFloat}: gputypes.TextureFormatRGBA16Float,

	// 32-bit channels
	{1, 4, KindUnsigned, ReadElement}:      gputypes.TextureFormatR32Uint,
	{1, 4, KindSigned, ReadElement}:        gputypes.TextureFormatR32Sint,
	{1, 4, KindFloat, ReadElement}:         gputypes.TextureFormatR32Float,
	{1, 4, KindFloat, ReadNormalizedFloat}: gputypes.TextureFormatR32Float,
	{2, 4, KindUnsigned, ReadElement}:      gputypes.TextureFormatRG32Uint,
	{2, 4, KindSigned, ReadElement}:        gputypes.TextureFormatRG32Sint,
	{2, 4, KindFloat, ReadElement}:         gputypes.TextureFormatRG32Float,
	{2, 4, KindFloat, ReadNormalizedFloat}: gputypes.TextureFormatRG32Float,
	{4, 4, KindUnsigned, ReadElement}:      gputypes.TextureFormatRGBA32Uint,
	{4, 4, KindSigned, ReadElement}:        gputypes.TextureFormatRGBA32Sint,
	{4, 4, KindFloat, ReadElement}:         gputypes.TextureFormatRGBA32Float,
	{4, 4, KindFloat, ReadNormalizedFloat}: gputypes.TextureFormatRGBA32Float,
}

// resolveFormat returns the platform texture format for a channel
// layout and read mode.
func resolveFormat(depth, itemSize int, kind ChannelKind, read ReadMode) (gputypes.TextureFormat, error) {
	format, ok := textureFormats[formatKey{depth, itemSize, kind, read}]
	if !ok {
		return 0, fmt.Errorf("%w: depth=%d itemSize=%d kind=%s read=%s",
			ErrTextureFormat, depth, itemSize, kind, read)
	}
	return format, nil
}
