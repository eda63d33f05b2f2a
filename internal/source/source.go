// Package source provides host-side frame sources for the GPU image
// pipeline: decoders and generators that produce HostImage descriptors
// ready for upload to device buffers.
package source

import "github.com/flowgpu/flowgpu/internal/gpuimage"

// Layout selects the host pixel layout a source produces.
type Layout int

const (
	// Gray8 is single-channel 8-bit luminance (depth=1, itemSize=1).
	Gray8 Layout = iota
	// RGBA8 is four-channel 8-bit color (depth=4, itemSize=1).
	RGBA8
	// GrayFloat32 is single-channel float32 luminance in [0, 1]
	// (depth=1, itemSize=4).
	GrayFloat32
)

// String returns a human-readable layout name.
func (l Layout) String() string {
	switch l {
	case Gray8:
		return "Gray8"
	case RGBA8:
		return "RGBA8"
	case GrayFloat32:
		return "GrayFloat32"
	default:
		return "Unknown"
	}
}

// FrameSource produces a sequence of host images for upload.
//
// Next returns io.EOF when the sequence is exhausted. The returned
// descriptor is a view over memory owned by the source and is only
// valid until the following Next call; upload it (or copy it) before
// advancing.
type FrameSource interface {
	Next() (gpuimage.HostImage, error)
	Close() error
}
