package gpuimage

import "errors"

// Error kinds reported by buffer and texture operations.
// Every fallible operation returns an error wrapping one of these
// sentinels (or the underlying platform error for allocation failures),
// and performs no partial side effects on failure: no bytes are copied
// and no half-configured hardware object is left behind.
var (
	// ErrShapeMismatch is returned by Upload and Download when the host
	// image shape differs from the buffer's current shape.
	ErrShapeMismatch = errors.New("gpuimage: shape mismatch")

	// ErrAllocation is returned when the platform cannot satisfy a
	// device memory request. Wraps the underlying platform error when
	// one is available.
	ErrAllocation = errors.New("gpuimage: device allocation failed")

	// ErrUnallocated is returned when an operation requires an existing
	// device allocation, e.g. Download on an empty buffer.
	ErrUnallocated = errors.New("gpuimage: buffer not allocated")

	// ErrInvalidImage is returned when a host image descriptor fails
	// validation (non-positive shape, undersized pitch or data).
	ErrInvalidImage = errors.New("gpuimage: invalid host image")

	// ErrChannelCount is returned by texture construction when the
	// buffer has more than 4 channels.
	ErrChannelCount = errors.New("gpuimage: channel count exceeds 4")

	// ErrTextureFormat is returned when no platform texture format
	// matches the buffer's channel layout.
	ErrTextureFormat = errors.New("gpuimage: no texture format for image layout")

	// ErrAddressMode is returned when the requested sampler address mode
	// is not recognized by the platform.
	ErrAddressMode = errors.New("gpuimage: unsupported address mode")

	// ErrTextureCreate is returned when the platform rejects the
	// composed texture, view, or sampler descriptors.
	ErrTextureCreate = errors.New("gpuimage: texture creation failed")
)
