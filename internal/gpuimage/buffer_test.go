package gpuimage

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDevice creates a device or skips when no GPU is available.
func newTestDevice(t *testing.T) *Device {
	t.Helper()
	if !IsAvailable() {
		t.Skip("WebGPU not available")
	}
	dev, err := New()
	require.NoError(t, err)
	t.Cleanup(dev.Release)
	return dev
}

// fakeBuffer builds an allocated Buffer without touching the device,
// for exercising validation paths that must fail before any platform
// call. freed counts platform releases.
func fakeBuffer(height, width, depth, itemSize int, freed *int) *Buffer {
	pitch := alignPitch(width * depth * itemSize)
	size := uint64(pitch) * uint64(height)
	return &Buffer{
		height:   height,
		width:    width,
		depth:    depth,
		itemSize: itemSize,
		pitch:    pitch,
		alloc:    newAllocation(nil, size, func() { *freed++ }),
	}
}

func TestAlignPitch(t *testing.T) {
	tests := []struct {
		rowSize, pitch int
	}{
		{1, 256},
		{255, 256},
		{256, 256},
		{257, 512},
		{640 * 4, 2560},  // 640 float32 pixels, already aligned
		{640 * 3, 2048},  // 640 RGB bytes, padded
		{1920 * 4, 7680}, // 1080p RGBA
	}
	for _, tt := range tests {
		assert.Equal(t, tt.pitch, alignPitch(tt.rowSize), "rowSize=%d", tt.rowSize)
		assert.GreaterOrEqual(t, alignPitch(tt.rowSize), tt.rowSize)
	}
}

func TestAllocationReleasesOnce(t *testing.T) {
	freed := 0
	a := newAllocation(nil, 1024, func() { freed++ })

	a.retain()
	a.retain()
	a.release()
	a.release()
	assert.Equal(t, 0, freed, "release must wait for the last owner")

	a.release()
	assert.Equal(t, 1, freed, "platform release must run exactly once")
}

func TestCloneSharesAllocation(t *testing.T) {
	freed := 0
	a := fakeBuffer(2, 2, 4, 1, &freed)
	b := a.Clone()

	require.Same(t, a.alloc, b.alloc)

	a.Release()
	assert.Equal(t, 0, freed)
	assert.True(t, a.Empty())

	// The surviving owner keeps its shape and allocation.
	assert.False(t, b.Empty())
	assert.Equal(t, 2, b.Height())
	assert.Equal(t, 4, b.Depth())

	b.Release()
	assert.Equal(t, 1, freed)
}

func TestCloneEmptyBuffer(t *testing.T) {
	a := NewEmptyBuffer(nil)
	b := a.Clone()
	assert.True(t, b.Empty())
	b.Release() // no-op, must not panic
}

func TestUploadShapeMismatchNoCopy(t *testing.T) {
	freed := 0
	b := fakeBuffer(2, 2, 4, 1, &freed)

	// Depth 3 instead of 4. The mismatch must be detected before any
	// platform call (the fake buffer has no device; reaching the copy
	// would panic).
	img := HostImage{
		Height: 2, Width: 2, Depth: 3, ItemSize: 1, Pitch: 6,
		Data: make([]byte, 12),
	}
	err := b.Upload(img)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	// Buffer shape is untouched.
	assert.Equal(t, 4, b.Depth())
	assert.False(t, b.Empty())
}

func TestDownloadShapeMismatchNoCopy(t *testing.T) {
	freed := 0
	b := fakeBuffer(4, 4, 1, 4, &freed)

	img := HostImage{
		Height: 4, Width: 5, Depth: 1, ItemSize: 4, Pitch: 20,
		Data: make([]byte, 80),
	}
	err := b.Download(img)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDownloadUnallocated(t *testing.T) {
	b := NewEmptyBuffer(nil)
	img := HostImage{
		Height: 2, Width: 2, Depth: 1, ItemSize: 1, Pitch: 2,
		Data: make([]byte, 4),
	}
	err := b.Download(img)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnallocated)
}

func TestUploadInvalidImage(t *testing.T) {
	b := NewEmptyBuffer(nil)
	img := HostImage{
		Height: 2, Width: 4, Depth: 1, ItemSize: 1, Pitch: 2, // pitch < row size
		Data: make([]byte, 8),
	}
	err := b.Upload(img)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.True(t, b.Empty(), "failed upload must not allocate")
}

// rampImage builds a single-channel float32 host image with a ramp
// pattern, using the given row pitch.
func rampImage(height, width, pitch int) HostImage {
	data := make([]byte, height*pitch)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := float32(y*width + x)
			binary.LittleEndian.PutUint32(data[y*pitch+x*4:], math.Float32bits(v))
		}
	}
	return HostImage{Height: height, Width: width, Depth: 1, ItemSize: 4, Pitch: pitch, Data: data}
}

func TestBufferPitchInvariant(t *testing.T) {
	dev := newTestDevice(t)

	shapes := []struct{ h, w, d, item int }{
		{480, 640, 1, 4},
		{2, 2, 4, 1},
		{1, 1, 1, 1},
		{33, 100, 3, 1},
	}
	for _, s := range shapes {
		b, err := NewBuffer(dev, s.h, s.w, s.d, s.item)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.Pitch(), s.w*s.d*s.item)
		assert.Equal(t, uint64(b.Pitch())*uint64(s.h), b.SizeBytes())
		b.Release()
	}
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	dev := newTestDevice(t)

	// 480x640 single-channel float ramp, tight host pitch.
	src := rampImage(480, 640, 640*4)

	b, err := NewBuffer(dev, 480, 640, 1, 4)
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, b.Upload(src))

	dst := HostImage{
		Height: 480, Width: 640, Depth: 1, ItemSize: 4, Pitch: 640 * 4,
		Data: make([]byte, 480*640*4),
	}
	require.NoError(t, b.Download(dst))

	assert.Equal(t, src.Data, dst.Data, "round trip must reproduce bytes exactly")
}

func TestRoundTripWithPaddedHostPitch(t *testing.T) {
	dev := newTestDevice(t)

	// Host pitch exceeds the tight row size on both sides of the trip.
	src := rampImage(16, 10, 64)

	b := NewEmptyBuffer(dev)
	defer b.Release()
	require.NoError(t, b.Upload(src))

	dst := HostImage{
		Height: 16, Width: 10, Depth: 1, ItemSize: 4, Pitch: 96,
		Data: make([]byte, 16*96),
	}
	require.NoError(t, b.Download(dst))

	for y := 0; y < 16; y++ {
		assert.Equal(t, src.Row(y), dst.Row(y), "row %d", y)
	}
}

func TestFirstUploadAllocates(t *testing.T) {
	dev := newTestDevice(t)

	b := NewEmptyBuffer(dev)
	defer b.Release()
	require.True(t, b.Empty())

	img := rampImage(8, 8, 32)
	require.NoError(t, b.Upload(img))

	assert.False(t, b.Empty())
	assert.Equal(t, 8, b.Height())
	assert.Equal(t, 8, b.Width())
	assert.Equal(t, 1, b.Depth())
	assert.Equal(t, 4, b.ItemSize())

	// A second upload with a different shape fails; it does not
	// re-allocate.
	other := rampImage(4, 4, 16)
	err := b.Upload(other)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, 8, b.Height())
}

func TestFailedUploadLeavesContents(t *testing.T) {
	dev := newTestDevice(t)

	b, err := NewBuffer(dev, 2, 2, 4, 1)
	require.NoError(t, err)
	defer b.Release()

	content := HostImage{
		Height: 2, Width: 2, Depth: 4, ItemSize: 1, Pitch: 8,
		Data: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	}
	require.NoError(t, b.Upload(content))

	// Mismatched depth must fail and copy nothing.
	bad := HostImage{
		Height: 2, Width: 2, Depth: 3, ItemSize: 1, Pitch: 6,
		Data: make([]byte, 12),
	}
	err = b.Upload(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	got := HostImage{
		Height: 2, Width: 2, Depth: 4, ItemSize: 1, Pitch: 8,
		Data: make([]byte, 16),
	}
	require.NoError(t, b.Download(got))
	assert.Equal(t, content.Data, got.Data, "failed upload must leave existing bytes untouched")
}

func TestSharedOwnershipOnDevice(t *testing.T) {
	dev := newTestDevice(t)

	a, err := NewBuffer(dev, 4, 4, 1, 4)
	require.NoError(t, err)

	img := rampImage(4, 4, 16)
	require.NoError(t, a.Upload(img))

	b := a.Clone()
	handle := b.Handle()
	a.Release()

	// The clone still references live device memory.
	assert.Same(t, handle, b.Handle())
	got := HostImage{
		Height: 4, Width: 4, Depth: 1, ItemSize: 4, Pitch: 16,
		Data: make([]byte, 64),
	}
	require.NoError(t, b.Download(got))
	assert.Equal(t, img.Data, got.Data)

	b.Release()
}
