package gpuimage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilTextureInvalid(t *testing.T) {
	var tx *Texture
	assert.False(t, tx.Valid())
}

func TestTextureRequiresAllocatedBuffer(t *testing.T) {
	tx, err := NewTexture(NewEmptyBuffer(nil), KindUnsigned)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnallocated)
	assert.False(t, tx.Valid())

	tx, err = NewTexture(nil, KindUnsigned)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnallocated)
	assert.False(t, tx.Valid())
}

func TestTextureChannelCountExceeded(t *testing.T) {
	freed := 0
	b := fakeBuffer(2, 2, 5, 1, &freed)

	// Rejected before any platform call; the fake buffer has no device.
	tx, err := NewTexture(b, KindUnsigned)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChannelCount)
	assert.False(t, tx.Valid())

	// The backing buffer remains usable and still solely owned.
	assert.False(t, b.Empty())
	b.Release()
	assert.Equal(t, 1, freed)
}

func TestTextureUnsupportedLayout(t *testing.T) {
	freed := 0
	b := fakeBuffer(2, 2, 3, 1, &freed)
	defer b.Release()

	tx, err := NewTexture(b, KindUnsigned)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTextureFormat)
	assert.False(t, tx.Valid())
}

func TestTextureCreateFailureReturnsError(t *testing.T) {
	freed := 0
	b := fakeBuffer(2, 2, 1, 1, &freed)

	// The fake buffer has no device, so the hardware creation step
	// fails. That must surface as ErrTextureCreate, not a panic.
	var tx *Texture
	var err error
	require.NotPanics(t, func() { tx, err = NewTexture(b, KindUnsigned) })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTextureCreate)
	assert.False(t, tx.Valid())

	// The buffer is untouched: still allocated and still solely owned.
	assert.False(t, b.Empty())
	b.Release()
	assert.Equal(t, 1, freed)
}

func TestTextureBorderAddressingRejected(t *testing.T) {
	freed := 0
	b := fakeBuffer(2, 2, 1, 1, &freed)
	defer b.Release()

	tx, err := NewTextureWith(b, KindUnsigned, AddressBorder, FilterNearest, ReadElement)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAddressMode)
	assert.False(t, tx.Valid())
}

func TestTextureCreateAndRelease(t *testing.T) {
	dev := newTestDevice(t)

	b, err := NewBuffer(dev, 8, 8, 1, 1)
	require.NoError(t, err)
	defer b.Release()

	img := HostImage{
		Height: 8, Width: 8, Depth: 1, ItemSize: 1, Pitch: 8,
		Data: make([]byte, 64),
	}
	for i := range img.Data {
		img.Data[i] = byte(i)
	}
	require.NoError(t, b.Upload(img))

	tx, err := NewTextureWith(b, KindUnsigned, AddressClamp, FilterNearest, ReadNormalizedFloat)
	require.NoError(t, err)
	require.True(t, tx.Valid())
	assert.NotNil(t, tx.View())
	assert.NotNil(t, tx.Sampler())

	// The texture holds a shared reference, not a copy of the value.
	require.NotNil(t, tx.Image())
	assert.Same(t, b.Handle(), tx.Image().Handle())

	require.NoError(t, tx.Refresh())

	tx.Release()
	assert.False(t, tx.Valid())

	// The buffer survives the texture and is still usable directly.
	got := HostImage{
		Height: 8, Width: 8, Depth: 1, ItemSize: 1, Pitch: 8,
		Data: make([]byte, 64),
	}
	require.NoError(t, b.Download(got))
	assert.Equal(t, img.Data, got.Data)
}

func TestTextureExtendsBufferLifetime(t *testing.T) {
	dev := newTestDevice(t)

	b, err := NewBuffer(dev, 4, 4, 1, 1)
	require.NoError(t, err)

	img := HostImage{
		Height: 4, Width: 4, Depth: 1, ItemSize: 1, Pitch: 4,
		Data: []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	}
	require.NoError(t, b.Upload(img))

	tx, err := NewTexture(b, KindUnsigned)
	require.NoError(t, err)
	require.True(t, tx.Valid())

	// Releasing the caller's buffer leaves the texture's retained
	// reference live.
	b.Release()
	got := HostImage{
		Height: 4, Width: 4, Depth: 1, ItemSize: 1, Pitch: 4,
		Data: make([]byte, 16),
	}
	require.NoError(t, tx.Image().Download(got))
	assert.Equal(t, img.Data, got.Data)

	tx.Release()
}
