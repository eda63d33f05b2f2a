// Copyright 2026 FlowGPU Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gpuimage provides the public API for GPU-resident image
// buffers and textures in the FlowGPU pipeline toolkit.
//
// The package manages image data in pitched device memory with
// synchronous, shape-validated host transfers and reference-counted
// shared ownership, and can expose a buffer to compute kernels through
// a hardware sampler view:
//
//	dev, err := gpuimage.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Release()
//
//	buf := gpuimage.NewEmptyBuffer(dev)
//	defer buf.Release()
//	if err := buf.Upload(frame); err != nil {  // adopts frame's shape
//	    log.Fatal(err)
//	}
//
//	tex, err := gpuimage.NewTexture(buf, gpuimage.KindUnsigned)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tex.Release()
package gpuimage

import (
	"github.com/flowgpu/flowgpu/internal/gpuimage"
)

// Type aliases for public API

// Device owns the platform objects shared by buffers and textures.
type Device = gpuimage.Device

// MemoryStats reports device memory usage.
type MemoryStats = gpuimage.MemoryStats

// HostImage is the host/device boundary descriptor: a non-owning view
// over host pixel memory.
type HostImage = gpuimage.HostImage

// Buffer is a pitched 2D image allocation in device memory with
// reference-counted shared ownership.
type Buffer = gpuimage.Buffer

// Texture is a hardware sampler view over a Buffer.
type Texture = gpuimage.Texture

// AddressMode selects sampler behavior outside the image.
type AddressMode = gpuimage.AddressMode

// Address mode constants.
const (
	AddressClamp  AddressMode = gpuimage.AddressClamp
	AddressWrap   AddressMode = gpuimage.AddressWrap
	AddressMirror AddressMode = gpuimage.AddressMirror
	AddressBorder AddressMode = gpuimage.AddressBorder
)

// FilterMode selects sampler interpolation.
type FilterMode = gpuimage.FilterMode

// Filter mode constants.
const (
	FilterNearest FilterMode = gpuimage.FilterNearest
	FilterLinear  FilterMode = gpuimage.FilterLinear
)

// ReadMode selects how kernels observe sampled values.
type ReadMode = gpuimage.ReadMode

// Read mode constants.
const (
	ReadElement         ReadMode = gpuimage.ReadElement
	ReadNormalizedFloat ReadMode = gpuimage.ReadNormalizedFloat
)

// ChannelKind classifies per-channel numeric representation.
type ChannelKind = gpuimage.ChannelKind

// Channel kind constants.
const (
	KindUnsigned ChannelKind = gpuimage.KindUnsigned
	KindSigned   ChannelKind = gpuimage.KindSigned
	KindFloat    ChannelKind = gpuimage.KindFloat
)

// Error kinds. Test with errors.Is.
var (
	ErrAllocation    = gpuimage.ErrAllocation
	ErrShapeMismatch = gpuimage.ErrShapeMismatch
	ErrUnallocated   = gpuimage.ErrUnallocated
	ErrInvalidImage  = gpuimage.ErrInvalidImage
	ErrChannelCount  = gpuimage.ErrChannelCount
	ErrTextureFormat = gpuimage.ErrTextureFormat
	ErrAddressMode   = gpuimage.ErrAddressMode
	ErrTextureCreate = gpuimage.ErrTextureCreate
)

// Constructors and device probes.
var (
	// New creates a Device on the first available adapter.
	New = gpuimage.New
	// IsAvailable checks if WebGPU is available on this system.
	IsAvailable = gpuimage.IsAvailable
	// ListAdapters returns information about available GPU adapters.
	ListAdapters = gpuimage.ListAdapters
	// NewBuffer allocates a pitched device buffer of the given shape.
	NewBuffer = gpuimage.NewBuffer
	// NewEmptyBuffer returns an unallocated buffer that adopts the
	// shape of its first Upload.
	NewEmptyBuffer = gpuimage.NewEmptyBuffer
	// NewTexture creates a sampler view with default configuration.
	NewTexture = gpuimage.NewTexture
	// NewTextureWith creates a sampler view with full control over the
	// sampling configuration.
	NewTextureWith = gpuimage.NewTextureWith
)
