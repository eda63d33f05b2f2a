package gpuimage

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// Device owns the WebGPU objects shared by all buffers and textures:
// the instance, adapter, logical device, and submission queue, plus the
// shader/pipeline caches used by compute stages and the staging buffer
// pool used by downloads.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache, keyed by stage name.
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfoGo

	// Staging buffer pool for host downloads.
	staging *stagingPool

	// Memory tracking for device allocations.
	memoryStats struct {
		totalAllocatedBytes uint64
		peakMemoryBytes     uint64
		activeAllocations   int64
		mu                  sync.RWMutex
	}
}

// New creates a Device on the first available high-performance adapter.
// Returns an error if WebGPU is not available or initialization fails.
func New() (dev *Device, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			dev = nil
			err = fmt.Errorf("gpuimage: native library not available: %v", r)
		}
	}()

	instance, instErr := wgpu.CreateInstance(nil)
	if instErr != nil {
		return nil, fmt.Errorf("gpuimage: failed to create instance: %w", instErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("gpuimage: failed to request adapter: %w", adapterErr)
	}

	// adapterInfo may be nil if GetInfo fails; Name falls back.
	adapterInfo, _ := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("gpuimage: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("gpuimage: failed to get queue")
	}

	d := &Device{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: adapterInfo,
	}
	d.staging = newStagingPool(device)

	return d, nil
}

// Release releases all WebGPU resources.
// Must be called when the device is no longer needed. Buffers and
// textures created on this device must be released first.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.staging != nil {
		d.staging.Clear()
		d.staging = nil
	}

	for _, p := range d.pipelines {
		p.Release()
	}
	d.pipelines = nil

	for _, s := range d.shaders {
		s.Release()
	}
	d.shaders = nil

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// Name returns a human-readable description of the adapter in use.
func (d *Device) Name() string {
	if d.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", d.adapterInfo.Device, d.adapterInfo.Vendor)
	}
	return "WebGPU"
}

// AdapterInfo returns information about the GPU adapter.
func (d *Device) AdapterInfo() *wgpu.AdapterInfoGo {
	return d.adapterInfo
}

// Handle returns the underlying WebGPU device, for compute stages that
// build their own pipeline resources.
func (d *Device) Handle() *wgpu.Device {
	return d.device
}

// Queue returns the device's submission queue.
func (d *Device) Queue() *wgpu.Queue {
	return d.queue
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// ListAdapters returns information about available GPU adapters.
func ListAdapters() (adapters []*wgpu.AdapterInfoGo, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			adapters = nil
			err = fmt.Errorf("gpuimage: native library not available: %v", r)
		}
	}()

	instance, instErr := wgpu.CreateInstance(nil)
	if instErr != nil {
		return nil, fmt.Errorf("gpuimage: no adapters available: %w", instErr)
	}
	defer instance.Release()

	adapter, adapterErr := instance.RequestAdapter(nil)
	if adapterErr != nil {
		return nil, fmt.Errorf("gpuimage: no adapters available: %w", adapterErr)
	}
	defer adapter.Release()

	info, infoErr := adapter.GetInfo()
	if infoErr != nil {
		return nil, fmt.Errorf("gpuimage: adapter info: %w", infoErr)
	}

	return []*wgpu.AdapterInfoGo{info}, nil
}

// CompileShader compiles WGSL shader code into a ShaderModule.
// Results are cached by name for the lifetime of the device.
func (d *Device) CompileShader(name, code string) *wgpu.ShaderModule {
	d.mu.RLock()
	if shader, exists := d.shaders[name]; exists {
		d.mu.RUnlock()
		return shader
	}
	d.mu.RUnlock()

	shader := d.device.CreateShaderModuleWGSL(code)

	d.mu.Lock()
	d.shaders[name] = shader
	d.mu.Unlock()

	return shader
}

// ComputePipeline returns a cached ComputePipeline or creates a new one
// with an auto-derived layout.
func (d *Device) ComputePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	d.mu.RLock()
	if pipeline, exists := d.pipelines[name]; exists {
		d.mu.RUnlock()
		return pipeline
	}
	d.mu.RUnlock()

	pipeline := d.device.CreateComputePipelineSimple(nil, shader, "main")

	d.mu.Lock()
	d.pipelines[name] = pipeline
	d.mu.Unlock()

	return pipeline
}

// newDeviceBuffer allocates a raw device buffer, converting a platform
// panic or nil result into an error so callers can report allocation
// failure without partial state.
func (d *Device) newDeviceBuffer(size uint64, usage gputypes.BufferUsage) (buf *wgpu.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()

	buf = d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
	if buf == nil {
		err = fmt.Errorf("%w: %d bytes", ErrAllocation, size)
	}
	return buf, err
}

// createStagedBuffer creates a device buffer with the given initial
// contents, using MappedAtCreation for the upload.
func (d *Device) createStagedBuffer(data []byte, usage gputypes.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))

	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// CreateUniformBuffer creates a uniform buffer with 16-byte alignment,
// for compute stage parameters.
func (d *Device) CreateUniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15

	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// submit encodes and submits a single command buffer built by record.
func (d *Device) submit(record func(encoder *wgpu.CommandEncoder)) {
	encoder := d.device.CreateCommandEncoder(nil)
	record(encoder)
	cmdBuffer := encoder.Finish(nil)
	d.queue.Submit(cmdBuffer)
}

// MemoryStats represents device memory usage statistics.
type MemoryStats struct {
	// Total bytes currently allocated on the device
	TotalAllocatedBytes uint64
	// Peak memory usage in bytes
	PeakMemoryBytes uint64
	// Number of currently active allocations
	ActiveAllocations int64
	// Staging pool statistics
	PoolAllocated uint64
	PoolReleased  uint64
	PoolHits      uint64
	PoolMisses    uint64
	PooledBuffers int
}

// MemoryStats returns current device memory usage statistics.
func (d *Device) MemoryStats() MemoryStats {
	d.memoryStats.mu.RLock()
	totalAllocated := d.memoryStats.totalAllocatedBytes
	peakMemory := d.memoryStats.peakMemoryBytes
	active := d.memoryStats.activeAllocations
	d.memoryStats.mu.RUnlock()

	allocated, released, hits, misses, pooledCount := d.staging.Stats()

	return MemoryStats{
		TotalAllocatedBytes: totalAllocated,
		PeakMemoryBytes:     peakMemory,
		ActiveAllocations:   active,
		PoolAllocated:       allocated,
		PoolReleased:        released,
		PoolHits:            hits,
		PoolMisses:          misses,
		PooledBuffers:       pooledCount,
	}
}

// trackAllocation records a device allocation in memory statistics.
func (d *Device) trackAllocation(size uint64) {
	d.memoryStats.mu.Lock()
	defer d.memoryStats.mu.Unlock()

	d.memoryStats.totalAllocatedBytes += size
	d.memoryStats.activeAllocations++

	if d.memoryStats.totalAllocatedBytes > d.memoryStats.peakMemoryBytes {
		d.memoryStats.peakMemoryBytes = d.memoryStats.totalAllocatedBytes
	}
}

// trackRelease records a device allocation release in memory statistics.
func (d *Device) trackRelease(size uint64) {
	d.memoryStats.mu.Lock()
	defer d.memoryStats.mu.Unlock()

	if d.memoryStats.totalAllocatedBytes >= size {
		d.memoryStats.totalAllocatedBytes -= size
	}
	d.memoryStats.activeAllocations--
}
