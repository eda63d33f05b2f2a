package pipeline

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgpu/flowgpu/internal/gpuimage"
	"github.com/flowgpu/flowgpu/internal/source"
)

func newTestDevice(t *testing.T) *gpuimage.Device {
	t.Helper()
	if !gpuimage.IsAvailable() {
		t.Skip("WebGPU not available")
	}
	dev, err := gpuimage.New()
	require.NoError(t, err)
	t.Cleanup(dev.Release)
	return dev
}

func TestResampleRejectsUnallocated(t *testing.T) {
	rs := NewResample(nil, gpuimage.FilterNearest)
	err := rs.Process(gpuimage.NewEmptyBuffer(nil), gpuimage.NewEmptyBuffer(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, gpuimage.ErrUnallocated)
}

func TestRunRequiresOutputBuffer(t *testing.T) {
	src := source.NewRampSource(2, 2, 1, source.Gray8)
	defer src.Close()

	_, err := Run(src, NewResample(nil, gpuimage.FilterNearest),
		gpuimage.NewEmptyBuffer(nil), gpuimage.NewEmptyBuffer(nil), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, gpuimage.ErrUnallocated)
}

// floatAt reads the float32 at pixel (x, y) of a downloaded image.
func floatAt(img gpuimage.HostImage, x, y int) float32 {
	off := y*img.Pitch + x*4
	return math.Float32frombits(binary.LittleEndian.Uint32(img.Data[off : off+4]))
}

func TestResampleIdentity(t *testing.T) {
	dev := newTestDevice(t)

	const h, w = 8, 8
	pix := make([]byte, h*w)
	for i := range pix {
		pix[i] = byte(i * 3)
	}
	in := gpuimage.NewEmptyBuffer(dev)
	defer in.Release()
	require.NoError(t, in.Upload(gpuimage.HostImage{
		Height: h, Width: w, Depth: 1, ItemSize: 1, Pitch: w, Data: pix,
	}))

	out, err := gpuimage.NewBuffer(dev, h, w, 1, 4)
	require.NoError(t, err)
	defer out.Release()

	rs := NewResample(dev, gpuimage.FilterNearest)
	defer rs.Release()
	require.NoError(t, rs.Process(out, in))

	got := gpuimage.HostImage{
		Height: h, Width: w, Depth: 1, ItemSize: 4, Pitch: w * 4,
		Data: make([]byte, h*w*4),
	}
	require.NoError(t, out.Download(got))

	// Same-size nearest resampling is the exact normalized input.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := float32(pix[y*w+x]) / 255.0
			assert.InDelta(t, want, floatAt(got, x, y), 1e-3, "pixel (%d, %d)", x, y)
		}
	}
}

func TestResampleDownscale(t *testing.T) {
	dev := newTestDevice(t)

	// Uniform input stays uniform at any scale and filter.
	const h, w = 16, 16
	pix := make([]byte, h*w)
	for i := range pix {
		pix[i] = 200
	}
	in := gpuimage.NewEmptyBuffer(dev)
	defer in.Release()
	require.NoError(t, in.Upload(gpuimage.HostImage{
		Height: h, Width: w, Depth: 1, ItemSize: 1, Pitch: w, Data: pix,
	}))

	out, err := gpuimage.NewBuffer(dev, 4, 4, 1, 4)
	require.NoError(t, err)
	defer out.Release()

	rs := NewResample(dev, gpuimage.FilterLinear)
	defer rs.Release()
	require.NoError(t, rs.Process(out, in))

	got := gpuimage.HostImage{
		Height: 4, Width: 4, Depth: 1, ItemSize: 4, Pitch: 16,
		Data: make([]byte, 64),
	}
	require.NoError(t, out.Download(got))

	want := float32(200) / 255.0
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.InDelta(t, want, floatAt(got, x, y), 1e-3)
		}
	}
}

func TestRunProcessesAllFrames(t *testing.T) {
	dev := newTestDevice(t)

	const h, w, frames = 8, 8, 3
	src := source.NewRampSource(h, w, frames, source.Gray8)
	defer src.Close()

	in := gpuimage.NewEmptyBuffer(dev)
	defer in.Release()
	out, err := gpuimage.NewBuffer(dev, h, w, 1, 4)
	require.NoError(t, err)
	defer out.Release()

	rs := NewResample(dev, gpuimage.FilterNearest)
	defer rs.Release()

	var seen []float32
	n, err := Run(src, rs, in, out, func(frame int, img gpuimage.HostImage) error {
		seen = append(seen, floatAt(img, 0, 0))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, frames, n)
	require.Len(t, seen, frames)

	// The ramp shifts by one pixel per frame, so the first pixel
	// advances 0, 1, 2.
	for i, v := range seen {
		assert.InDelta(t, float32(i)/255.0, v, 1e-3, "frame %d", i)
	}
}
