// Copyright 2026 FlowGPU Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package source provides the public API for host-side frame sources:
// image-directory decoding, synthetic generators, and conversions from
// Go images to host descriptors ready for device upload.
package source

import (
	"github.com/flowgpu/flowgpu/internal/source"
)

// Type aliases for public API

// Layout selects the host pixel layout a source produces.
type Layout = source.Layout

// Layout constants.
const (
	Gray8       Layout = source.Gray8
	RGBA8       Layout = source.RGBA8
	GrayFloat32 Layout = source.GrayFloat32
)

// FrameSource produces a sequence of host images for upload.
type FrameSource = source.FrameSource

// DirSource reads a directory of image files in sorted filename order.
type DirSource = source.DirSource

// RampSource generates deterministic synthetic frames.
type RampSource = source.RampSource

// Constructors and conversion helpers.
var (
	// NewDirSource creates a source over the image files in a directory.
	NewDirSource = source.NewDirSource
	// NewRampSource creates a synthetic ramp-frame generator.
	NewRampSource = source.NewRampSource
	// WrapGray wraps a grayscale image without copying.
	WrapGray = source.WrapGray
	// WrapRGBA wraps an RGBA image without copying.
	WrapRGBA = source.WrapRGBA
	// WrapFloat32 wraps a tightly-packed float32 plane.
	WrapFloat32 = source.WrapFloat32
	// FromImage converts any image into a host descriptor.
	FromImage = source.FromImage
	// Scale resamples an image to a new size on the host.
	Scale = source.Scale
)
