package gpuimage

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		depth, itemSize int
		kind            ChannelKind
		read            ReadMode
		want            gputypes.TextureFormat
	}{
		{1, 1, KindUnsigned, ReadElement, gputypes.TextureFormatR8Uint},
		{1, 1, KindUnsigned, ReadNormalizedFloat, gputypes.TextureFormatR8Unorm},
		{4, 1, KindUnsigned, ReadNormalizedFloat, gputypes.TextureFormatRGBA8Unorm},
		{1, 4, KindFloat, ReadElement, gputypes.TextureFormatR32Float},
		{1, 4, KindFloat, ReadNormalizedFloat, gputypes.TextureFormatR32Float},
		{2, 4, KindFloat, ReadElement, gputypes.TextureFormatRG32Float},
		{4, 2, KindSigned, ReadElement, gputypes.TextureFormatRGBA16Sint},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.depth, tt.itemSize, tt.kind, tt.read)
		require.NoError(t, err, "depth=%d itemSize=%d", tt.depth, tt.itemSize)
		assert.Equal(t, tt.want, got)
	}
}

func TestResolveFormatUnsupported(t *testing.T) {
	tests := []struct {
		name            string
		depth, itemSize int
		kind            ChannelKind
		read            ReadMode
	}{
		{"three channels", 3, 1, KindUnsigned, ReadElement},
		{"8-bit float", 1, 1, KindFloat, ReadElement},
		{"normalized 32-bit int", 1, 4, KindUnsigned, ReadNormalizedFloat},
		{"odd item size", 1, 3, KindUnsigned, ReadElement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveFormat(tt.depth, tt.itemSize, tt.kind, tt.read)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTextureFormat)
		})
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Unsigned", KindUnsigned.String())
	assert.Equal(t, "Signed", KindSigned.String())
	assert.Equal(t, "Float", KindFloat.String())
	assert.Equal(t, "Element", ReadElement.String())
	assert.Equal(t, "NormalizedFloat", ReadNormalizedFloat.String())
	assert.Equal(t, "Clamp", AddressClamp.String())
	assert.Equal(t, "Wrap", AddressWrap.String())
	assert.Equal(t, "Mirror", AddressMirror.String())
	assert.Equal(t, "Border", AddressBorder.String())
	assert.Equal(t, "Nearest", FilterNearest.String())
	assert.Equal(t, "Linear", FilterLinear.String())
}
