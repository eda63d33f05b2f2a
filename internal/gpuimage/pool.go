package gpuimage

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// stagingClass represents staging buffer size categories for pooling.
type stagingClass int

const (
	// smallStaging for transfers < 64KB (thumbnails, single rows).
	smallStaging stagingClass = iota
	// mediumStaging for transfers 64KB-4MB (typical video frames).
	mediumStaging
	// largeStaging for transfers > 4MB (high-resolution frames).
	largeStaging
)

const (
	// Size thresholds for staging categories.
	smallStagingThreshold  = 64 * 1024
	mediumStagingThreshold = 4 * 1024 * 1024
	maxStagingPerClass     = 8 // Max pooled buffers per category
)

// pooledStaging wraps a staging buffer with its allocated size.
type pooledStaging struct {
	buffer *wgpu.Buffer
	size   uint64
}

// stagingPool reuses MapRead staging buffers across downloads to reduce
// allocation overhead in per-frame transfer loops. Buffers are
// categorized by size; an acquired buffer may be larger than requested.
type stagingPool struct {
	device *wgpu.Device

	small  []*pooledStaging
	medium []*pooledStaging
	large  []*pooledStaging

	mu sync.Mutex

	// Statistics
	totalAllocated uint64
	totalReleased  uint64
	poolHits       uint64
	poolMisses     uint64
}

// newStagingPool creates a staging pool for the given device.
func newStagingPool(device *wgpu.Device) *stagingPool {
	return &stagingPool{
		device: device,
		small:  make([]*pooledStaging, 0, maxStagingPerClass),
		medium: make([]*pooledStaging, 0, maxStagingPerClass),
		large:  make([]*pooledStaging, 0, maxStagingPerClass),
	}
}

// Acquire gets a staging buffer from the pool or creates a new one.
// The returned buffer has MapRead|CopyDst usage and at least the
// requested size; the second result is its actual allocated size, which
// the caller passes back to Release so pooled capacity is not
// understated after an oversized hit.
func (p *stagingPool) Acquire(size uint64) (*wgpu.Buffer, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := p.classify(size)
	pool := p.getPool(class)

	for i, ps := range pool {
		if ps.size >= size {
			buffer := ps.buffer
			actual := ps.size
			p.removeFromPool(class, i)
			p.poolHits++
			return buffer, actual
		}
	}

	p.poolMisses++
	p.totalAllocated++

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		Size:  size,
	}), size
}

// Release returns a staging buffer to the pool for reuse. size is the
// buffer's actual allocated size as reported by Acquire. The buffer
// must be unmapped. If the pool is full, the buffer is released
// immediately.
func (p *stagingPool) Release(buffer *wgpu.Buffer, size uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalReleased++

	class := p.classify(size)
	pool := p.getPool(class)

	if len(pool) >= maxStagingPerClass {
		buffer.Release()
		return
	}

	p.addToPool(class, &pooledStaging{buffer: buffer, size: size})
}

// Clear releases all pooled staging buffers.
// Called when the device is released.
func (p *stagingPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ps := range p.small {
		ps.buffer.Release()
	}
	p.small = p.small[:0]

	for _, ps := range p.medium {
		ps.buffer.Release()
	}
	p.medium = p.medium[:0]

	for _, ps := range p.large {
		ps.buffer.Release()
	}
	p.large = p.large[:0]
}

// Stats returns statistics about staging pool usage.
func (p *stagingPool) Stats() (allocated, released, hits, misses uint64, pooledCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.totalAllocated, p.totalReleased, p.poolHits, p.poolMisses,
		len(p.small) + len(p.medium) + len(p.large)
}

// classify determines the size category for a staging buffer.
func (p *stagingPool) classify(size uint64) stagingClass {
	if size < smallStagingThreshold {
		return smallStaging
	}
	if size < mediumStagingThreshold {
		return mediumStaging
	}
	return largeStaging
}

// getPool returns the pool slice for a given category.
func (p *stagingPool) getPool(class stagingClass) []*pooledStaging {
	switch class {
	case smallStaging:
		return p.small
	case mediumStaging:
		return p.medium
	case largeStaging:
		return p.large
	default:
		return nil
	}
}

// addToPool adds a buffer to the appropriate pool category.
func (p *stagingPool) addToPool(class stagingClass, ps *pooledStaging) {
	switch class {
	case smallStaging:
		p.small = append(p.small, ps)
	case mediumStaging:
		p.medium = append(p.medium, ps)
	case largeStaging:
		p.large = append(p.large, ps)
	}
}

// removeFromPool removes the buffer at index i from its pool category.
func (p *stagingPool) removeFromPool(class stagingClass, i int) {
	switch class {
	case smallStaging:
		p.small = append(p.small[:i], p.small[i+1:]...)
	case mediumStaging:
		p.medium = append(p.medium[:i], p.medium[i+1:]...)
	case largeStaging:
		p.large = append(p.large[:i], p.large[i+1:]...)
	}
}
