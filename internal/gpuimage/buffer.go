package gpuimage

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// rowPitchAlign is the WebGPU row alignment for buffer<->texture copies.
// Device buffer rows are padded to this boundary so any buffer can be
// used directly as a texture copy source.
const rowPitchAlign = 256

// alignPitch rounds a tight row size up to the device row alignment.
func alignPitch(rowSize int) int {
	return (rowSize + rowPitchAlign - 1) &^ (rowPitchAlign - 1)
}

// allocation is a reference-counted device allocation shared between
// Buffer values (and Textures holding them). The platform release runs
// exactly once, when the last reference is dropped.
type allocation struct {
	buf      *wgpu.Buffer
	size     uint64
	refCount atomic.Int32
	free     func()
}

// newAllocation creates an allocation with refCount = 1.
// free is the platform release action.
func newAllocation(buf *wgpu.Buffer, size uint64, free func()) *allocation {
	a := &allocation{buf: buf, size: size, free: free}
	a.refCount.Store(1)
	return a
}

// retain increments the reference count (for Clone operations).
func (a *allocation) retain() {
	a.refCount.Add(1)
}

// release decrements the reference count and runs the platform release
// when it reaches 0.
func (a *allocation) release() {
	if a.refCount.Add(-1) == 0 {
		if a.free != nil {
			a.free()
		}
		a.buf = nil
	}
}

// Buffer is a pitched 2D image allocation in device memory.
//
// A Buffer is either unallocated (all shape fields zero) or allocated
// (all positive, pitch >= Width*Depth*ItemSize); no partial state is
// visible. The allocation is reference counted: Clone returns a second
// owner of the same device memory, and the memory is released through
// the platform exactly once, when the last owner calls Release.
//
// Buffers are for single-threaded sequential use; concurrent operations
// on the same buffer must be serialized by the caller.
type Buffer struct {
	dev      *Device
	height   int
	width    int
	depth    int
	itemSize int
	pitch    int
	alloc    *allocation
}

// NewEmptyBuffer returns an unallocated buffer. Shape and device memory
// are adopted from the first Upload.
func NewEmptyBuffer(dev *Device) *Buffer {
	return &Buffer{dev: dev}
}

// NewBuffer allocates a pitched device buffer for an image of the given
// shape. The device chooses the actual row pitch, which may exceed the
// tight row size width*depth*itemSize. On failure the returned error
// wraps the platform error and no buffer is allocated.
func NewBuffer(dev *Device, height, width, depth, itemSize int) (*Buffer, error) {
	b := NewEmptyBuffer(dev)
	if err := b.allocate(height, width, depth, itemSize); err != nil {
		return nil, err
	}
	return b, nil
}

// allocate performs the Empty -> Allocated transition.
func (b *Buffer) allocate(height, width, depth, itemSize int) error {
	if height <= 0 || width <= 0 || depth <= 0 || itemSize <= 0 {
		return fmt.Errorf("%w: non-positive shape [%d, %d, %d] itemSize=%d",
			ErrInvalidImage, height, width, depth, itemSize)
	}

	pitch := alignPitch(width * depth * itemSize)
	size := uint64(pitch) * uint64(height)

	buf, err := b.dev.newDeviceBuffer(size,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}

	dev := b.dev
	dev.trackAllocation(size)
	b.alloc = newAllocation(buf, size, func() {
		buf.Release()
		dev.trackRelease(size)
	})
	b.height = height
	b.width = width
	b.depth = depth
	b.itemSize = itemSize
	b.pitch = pitch
	return nil
}

// Empty reports whether the buffer has no device allocation.
func (b *Buffer) Empty() bool { return b.alloc == nil }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.height }

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Depth returns the number of channels per pixel.
func (b *Buffer) Depth() int { return b.depth }

// ItemSize returns the bytes per channel element.
func (b *Buffer) ItemSize() int { return b.itemSize }

// Pitch returns the device row stride in bytes.
// Always >= Width()*Depth()*ItemSize() when allocated.
func (b *Buffer) Pitch() int { return b.pitch }

// RowSize returns the tight row size in bytes.
func (b *Buffer) RowSize() int { return b.width * b.depth * b.itemSize }

// SizeBytes returns the total device allocation size in bytes.
func (b *Buffer) SizeBytes() uint64 {
	if b.alloc == nil {
		return 0
	}
	return b.alloc.size
}

// Handle returns the raw device buffer, for compute stages binding the
// buffer into their own pipelines. Nil when unallocated.
func (b *Buffer) Handle() *wgpu.Buffer {
	if b.alloc == nil {
		return nil
	}
	return b.alloc.buf
}

// Clone returns a second owner of the same device allocation. The clone
// sees the same contents and pointer; the allocation is released when
// the last owner calls Release. Cloning an empty buffer yields an
// independent empty buffer.
func (b *Buffer) Clone() *Buffer {
	if b.alloc != nil {
		b.alloc.retain()
	}
	return &Buffer{
		dev:      b.dev,
		height:   b.height,
		width:    b.width,
		depth:    b.depth,
		itemSize: b.itemSize,
		pitch:    b.pitch,
		alloc:    b.alloc,
	}
}

// Release drops this owner's reference to the device allocation and
// returns the buffer to the unallocated state. The device memory is
// freed through the platform when the last owner releases.
func (b *Buffer) Release() {
	if b.alloc != nil {
		b.alloc.release()
		b.alloc = nil
	}
	b.height, b.width, b.depth, b.itemSize, b.pitch = 0, 0, 0, 0, 0
}

// shapeMatches reports whether the host image shape equals the buffer
// shape exactly. Pitches are not compared: each side's pitch is
// respected independently by the strided copies.
func (b *Buffer) shapeMatches(img HostImage) bool {
	return b.height == img.Height && b.width == img.Width &&
		b.depth == img.Depth && b.itemSize == img.ItemSize
}

// Upload copies a host image into the device buffer.
//
// An unallocated buffer adopts the image's shape and allocates first.
// Otherwise height, width, depth and itemSize must match the buffer
// exactly; on mismatch ErrShapeMismatch is returned and nothing is
// copied. The copy is a synchronous 2D strided copy: source rows
// advance by the image pitch, destination rows by the buffer pitch.
func (b *Buffer) Upload(img HostImage) error {
	if err := img.Validate(); err != nil {
		return err
	}
	if b.Empty() {
		if err := b.allocate(img.Height, img.Width, img.Depth, img.ItemSize); err != nil {
			return err
		}
	} else if !b.shapeMatches(img) {
		return fmt.Errorf("%w: buffer [%d, %d, %d]x%d, image [%d, %d, %d]x%d",
			ErrShapeMismatch, b.height, b.width, b.depth, b.itemSize,
			img.Height, img.Width, img.Depth, img.ItemSize)
	}

	// Repack host rows into the device pitch.
	staged := make([]byte, b.alloc.size)
	rowSize := b.RowSize()
	for y := 0; y < b.height; y++ {
		copy(staged[y*b.pitch:y*b.pitch+rowSize], img.Data[y*img.Pitch:y*img.Pitch+rowSize])
	}

	staging := b.dev.createStagedBuffer(staged, gputypes.BufferUsageCopySrc)
	defer staging.Release()

	b.dev.submit(func(encoder *wgpu.CommandEncoder) {
		encoder.CopyBufferToBuffer(staging, 0, b.alloc.buf, 0, b.alloc.size)
	})
	return nil
}

// Download copies the device buffer into a host image.
//
// Fails with ErrUnallocated if the buffer has no allocation, and with
// ErrShapeMismatch if the image shape differs from the buffer shape;
// in both cases nothing is copied. On match the inverse strided 2D copy
// runs and blocks until the transfer completes.
func (b *Buffer) Download(img HostImage) error {
	if b.Empty() {
		return fmt.Errorf("%w: download requires an allocated buffer", ErrUnallocated)
	}
	if err := img.Validate(); err != nil {
		return err
	}
	if !b.shapeMatches(img) {
		return fmt.Errorf("%w: buffer [%d, %d, %d]x%d, image [%d, %d, %d]x%d",
			ErrShapeMismatch, b.height, b.width, b.depth, b.itemSize,
			img.Height, img.Width, img.Depth, img.ItemSize)
	}

	size := b.alloc.size
	staging, stagingSize := b.dev.staging.Acquire(size)
	defer b.dev.staging.Release(staging, stagingSize)

	b.dev.submit(func(encoder *wgpu.CommandEncoder) {
		encoder.CopyBufferToBuffer(b.alloc.buf, 0, staging, 0, size)
	})

	if err := staging.MapAsync(b.dev.device, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("gpuimage: failed to map staging buffer: %w", err)
	}

	mappedPtr := staging.GetMappedRange(0, size)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)

	rowSize := b.RowSize()
	for y := 0; y < b.height; y++ {
		copy(img.Data[y*img.Pitch:y*img.Pitch+rowSize], mappedSlice[y*b.pitch:y*b.pitch+rowSize])
	}

	staging.Unmap()
	return nil
}
