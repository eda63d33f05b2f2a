// Package gpuimage implements GPU-resident image buffers for real-time
// video processing pipelines, using go-webgpu (github.com/go-webgpu/webgpu)
// for zero-CGO WebGPU bindings.
//
// The package manages a second, independent memory space: image data lives
// in pitched device allocations whose row stride is chosen by the platform,
// is transferred synchronously to and from host memory with full shape
// validation, and can be shared between multiple owners through reference
// counting. A Buffer can additionally be bound to a hardware sampler view
// (Texture) for filtered, clamped reads inside compute kernels.
//
// All operations on a given Buffer or Texture are single-threaded and
// synchronous; callers running concurrent pipelines must serialize access
// to shared buffers externally.
package gpuimage
