package source

import (
	"io"

	"github.com/flowgpu/flowgpu/internal/gpuimage"
)

// RampSource generates deterministic synthetic frames: a luminance ramp
// that shifts by one pixel per frame. Useful for pipeline smoke tests
// and benchmarking without file I/O.
type RampSource struct {
	height, width int
	frames        int
	layout        Layout
	next          int

	pix  []byte
	vals []float32
}

// NewRampSource creates a generator of the given shape producing
// frames in the Gray8 or GrayFloat32 layout.
func NewRampSource(height, width, frames int, layout Layout) *RampSource {
	s := &RampSource{height: height, width: width, frames: frames, layout: layout}
	if layout == GrayFloat32 {
		s.vals = make([]float32, height*width)
	} else {
		s.pix = make([]byte, height*width)
	}
	return s
}

// Next generates the next frame. Returns io.EOF after the configured
// frame count.
func (s *RampSource) Next() (gpuimage.HostImage, error) {
	if s.next >= s.frames {
		return gpuimage.HostImage{}, io.EOF
	}
	shift := s.next
	s.next++

	if s.layout == GrayFloat32 {
		for i := range s.vals {
			s.vals[i] = float32((i+shift)%256) / 255.0
		}
		return WrapFloat32(s.vals, s.height, s.width)
	}

	for i := range s.pix {
		s.pix[i] = byte((i + shift) % 256)
	}
	return gpuimage.HostImage{
		Height:   s.height,
		Width:    s.width,
		Depth:    1,
		ItemSize: 1,
		Pitch:    s.width,
		Data:     s.pix,
	}, nil
}

// Close marks the sequence exhausted.
func (s *RampSource) Close() error {
	s.next = s.frames
	return nil
}
