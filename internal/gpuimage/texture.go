package gpuimage

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// AddressMode selects what a sampler returns for coordinates outside
// the image.
type AddressMode int

const (
	// AddressClamp clamps to the nearest edge texel.
	AddressClamp AddressMode = iota
	// AddressWrap repeats the image.
	AddressWrap
	// AddressMirror repeats the image with mirroring.
	AddressMirror
	// AddressBorder returns a border color. Core WebGPU has no border
	// addressing; requesting it fails texture construction with
	// ErrAddressMode.
	AddressBorder
)

// String returns a human-readable address mode name.
func (m AddressMode) String() string {
	switch m {
	case AddressClamp:
		return "Clamp"
	case AddressWrap:
		return "Wrap"
	case AddressMirror:
		return "Mirror"
	case AddressBorder:
		return "Border"
	default:
		return "Unknown"
	}
}

// wgpuAddressModes maps address modes to platform sampler modes.
// AddressBorder is absent: the platform does not recognize it.
var wgpuAddressModes = map[AddressMode]gputypes.AddressMode{
	AddressClamp:  gputypes.AddressModeClampToEdge,
	AddressWrap:   gputypes.AddressModeRepeat,
	AddressMirror: gputypes.AddressModeMirrorRepeat,
}

// FilterMode selects how a sampler interpolates between texels.
type FilterMode int

const (
	// FilterNearest returns the nearest texel.
	FilterNearest FilterMode = iota
	// FilterLinear interpolates linearly between neighboring texels.
	FilterLinear
)

// String returns a human-readable filter mode name.
func (m FilterMode) String() string {
	switch m {
	case FilterNearest:
		return "Nearest"
	case FilterLinear:
		return "Linear"
	default:
		return "Unknown"
	}
}

// wgpuFilterModes maps filter modes to platform filter modes.
var wgpuFilterModes = map[FilterMode]gputypes.FilterMode{
	FilterNearest: gputypes.FilterModeNearest,
	FilterLinear:  gputypes.FilterModeLinear,
}

// Texture is a hardware sampler view over a Buffer, for read-heavy
// kernel stages that want filtered, clamped or wrapped coordinate-based
// sampling instead of direct pointer access.
//
// A Texture holds a live reference to its source Buffer, extending the
// buffer's allocation lifetime for as long as the texture exists. The
// sampling configuration is immutable after construction. Because the
// platform cannot alias buffer memory as a sampled image, construction
// copies the buffer contents into the texture; Refresh re-copies after
// the buffer has been re-uploaded.
//
// Kernels receive normalized [0,1] sampling coordinates; converting
// pixel indices to normalized coordinates is the kernel's concern.
type Texture struct {
	buf     *Buffer
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	format  gputypes.TextureFormat
	valid   bool
}

// NewTexture creates a sampler view over buf with the default sampling
// configuration: clamp-to-edge addressing and nearest-neighbor
// filtering, with element-typed reads.
func NewTexture(buf *Buffer, kind ChannelKind) (*Texture, error) {
	return NewTextureWith(buf, kind, AddressClamp, FilterNearest, ReadElement)
}

// NewTextureWith creates a sampler view over buf with full control over
// the sampling configuration.
//
// The buffer must be allocated with at most 4 channels, and its channel
// layout must map to a platform texture format. On any failure the
// returned texture is nil (Valid reports false on a nil texture), no
// hardware object is left behind, and the buffer remains valid and
// usable directly.
func NewTextureWith(buf *Buffer, kind ChannelKind, addr AddressMode, filter FilterMode, read ReadMode) (*Texture, error) {
	if buf == nil || buf.Empty() {
		return nil, fmt.Errorf("%w: texture requires an allocated buffer", ErrUnallocated)
	}
	if buf.Depth() > 4 {
		return nil, fmt.Errorf("%w: buffer has %d channels", ErrChannelCount, buf.Depth())
	}

	format, err := resolveFormat(buf.Depth(), buf.ItemSize(), kind, read)
	if err != nil {
		return nil, err
	}

	wgpuAddr, ok := wgpuAddressModes[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAddressMode, addr)
	}
	wgpuFilter, ok := wgpuFilterModes[filter]
	if !ok {
		return nil, fmt.Errorf("gpuimage: unknown filter mode %d", filter)
	}

	t := &Texture{format: format}
	if err := t.create(buf.dev, buf, wgpuAddr, wgpuFilter); err != nil {
		t.teardown()
		return nil, err
	}

	t.buf = buf.Clone()
	t.valid = true

	if err := t.copyFrom(t.buf); err != nil {
		t.buf.Release()
		t.valid = false
		t.teardown()
		return nil, err
	}
	return t, nil
}

// create builds the texture, view and sampler objects. A platform
// panic or nil result is converted into ErrTextureCreate.
func (t *Texture) create(dev *Device, buf *Buffer, addr gputypes.AddressMode, filter gputypes.FilterMode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTextureCreate, r)
		}
	}()

	t.texture = dev.device.CreateTexture(&wgpu.TextureDescriptor{
		Size: gputypes.Extent3D{
			Width:              uint32(buf.Width()),
			Height:             uint32(buf.Height()),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if t.texture == nil {
		return fmt.Errorf("%w: platform rejected texture descriptor", ErrTextureCreate)
	}

	t.view = t.texture.CreateView(nil)
	if t.view == nil {
		return fmt.Errorf("%w: platform rejected view descriptor", ErrTextureCreate)
	}

	t.sampler = dev.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  addr,
		AddressModeV:  addr,
		AddressModeW:  addr,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  gputypes.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if t.sampler == nil {
		return fmt.Errorf("%w: platform rejected sampler descriptor", ErrTextureCreate)
	}
	return nil
}

// copyFrom copies the pitched buffer contents into the texture.
func (t *Texture) copyFrom(buf *Buffer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: content copy: %v", ErrTextureCreate, r)
		}
	}()

	buf.dev.submit(func(encoder *wgpu.CommandEncoder) {
		encoder.CopyBufferToTexture(
			&wgpu.TexelCopyBufferInfo{
				Layout: wgpu.TexelCopyBufferLayout{
					Offset:       0,
					BytesPerRow:  uint32(buf.Pitch()),
					RowsPerImage: uint32(buf.Height()),
				},
				Buffer: buf.alloc.buf.Handle(),
			},
			&wgpu.TexelCopyTextureInfo{
				Texture:  t.texture.Handle(),
				MipLevel: 0,
				Origin:   gputypes.Origin3D{X: 0, Y: 0, Z: 0},
				Aspect:   wgpu.TextureAspectAll,
			},
			&gputypes.Extent3D{
				Width:              uint32(buf.Width()),
				Height:             uint32(buf.Height()),
				DepthOrArrayLayers: 1,
			},
		)
	})
	return nil
}

// Valid reports whether construction succeeded and the sampler view is
// usable. Safe on a nil texture.
func (t *Texture) Valid() bool {
	return t != nil && t.valid
}

// View returns the texture view for bind group entries. The caller must
// not use it unless Valid reports true.
func (t *Texture) View() *wgpu.TextureView {
	return t.view
}

// Sampler returns the sampler handle for bind group entries. The caller
// must not use it unless Valid reports true.
func (t *Texture) Sampler() *wgpu.Sampler {
	return t.sampler
}

// Image returns the held Buffer. This is a shared reference to the
// texture's own retained owner, not a copy of contents; callers must
// not release it.
func (t *Texture) Image() *Buffer {
	return t.buf
}

// Refresh re-copies the current buffer contents into the texture, for
// use after the buffer has been re-uploaded. Fails on an invalid
// texture.
func (t *Texture) Refresh() error {
	if !t.Valid() {
		return fmt.Errorf("%w: refresh on invalid texture", ErrTextureCreate)
	}
	return t.copyFrom(t.buf)
}

// teardown releases whatever hardware objects exist, in reverse
// creation order.
func (t *Texture) teardown() {
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// Release releases the hardware sampler objects if the texture is
// valid, then drops the held buffer reference. The underlying
// allocation survives if other owners remain.
func (t *Texture) Release() {
	if t.valid {
		t.teardown()
		t.valid = false
	}
	if t.buf != nil {
		t.buf.Release()
		t.buf = nil
	}
}
