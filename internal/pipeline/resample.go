package pipeline

import (
	"encoding/binary"
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/flowgpu/flowgpu/internal/gpuimage"
)

// Resample rescales a single-channel 8-bit image into a normalized
// float32 image of the output buffer's size, sampling the input
// through a hardware texture. With FilterLinear the rescale is
// bilinear; with FilterNearest it is nearest-neighbor. Identical input
// and output sizes make it a gray-to-float conversion, the usual
// preprocessing step ahead of flow estimation.
type Resample struct {
	dev    *gpuimage.Device
	filter gpuimage.FilterMode

	// texture over the current input buffer, rebuilt when the input
	// buffer identity changes
	tex *gpuimage.Texture
}

// NewResample creates a resampling stage with the given filter mode.
func NewResample(dev *gpuimage.Device, filter gpuimage.FilterMode) *Resample {
	return &Resample{dev: dev, filter: filter}
}

// Process resamples src into dst. src must be depth=1 itemSize=1
// (Gray8); dst must be allocated with depth=1 itemSize=4 (float32).
func (rs *Resample) Process(dst, src *gpuimage.Buffer) error {
	if src == nil || src.Empty() || dst == nil || dst.Empty() {
		return fmt.Errorf("pipeline: resample: %w", gpuimage.ErrUnallocated)
	}
	if src.Depth() != 1 || src.ItemSize() != 1 {
		return fmt.Errorf("pipeline: resample: input must be Gray8, got depth=%d itemSize=%d",
			src.Depth(), src.ItemSize())
	}
	if dst.Depth() != 1 || dst.ItemSize() != 4 {
		return fmt.Errorf("pipeline: resample: output must be float32, got depth=%d itemSize=%d",
			dst.Depth(), dst.ItemSize())
	}

	if err := rs.bindTexture(src); err != nil {
		return err
	}

	shader := rs.dev.CompileShader("resample", resampleShader)
	pipeline := rs.dev.ComputePipeline("resample", shader)

	// Stage parameters: output size and pitch in float words.
	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(dst.Width()))
	binary.LittleEndian.PutUint32(params[4:8], uint32(dst.Height()))
	binary.LittleEndian.PutUint32(params[8:12], uint32(dst.Pitch()/4))
	bufferParams := rs.dev.CreateUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := rs.dev.Handle().CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.TextureBindingEntry(0, rs.tex.View()),
		wgpu.SamplerBindingEntry(1, rs.tex.Sampler()),
		wgpu.BufferBindingEntry(2, dst.Handle(), 0, dst.SizeBytes()),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	encoder := rs.dev.Handle().CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)

	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)

	groupsX := (uint32(dst.Width()) + workgroupX - 1) / workgroupX
	groupsY := (uint32(dst.Height()) + workgroupY - 1) / workgroupY
	computePass.DispatchWorkgroups(groupsX, groupsY, 1)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	rs.dev.Queue().Submit(cmdBuffer)

	return nil
}

// bindTexture creates or refreshes the sampled view over src.
// The texture is rebuilt only when the input buffer identity changes;
// a re-uploaded buffer needs only a content refresh.
func (rs *Resample) bindTexture(src *gpuimage.Buffer) error {
	if rs.tex.Valid() && rs.tex.Image().Handle() == src.Handle() {
		return rs.tex.Refresh()
	}
	if rs.tex != nil {
		rs.tex.Release()
		rs.tex = nil
	}

	tex, err := gpuimage.NewTextureWith(src, gpuimage.KindUnsigned,
		gpuimage.AddressClamp, rs.filter, gpuimage.ReadNormalizedFloat)
	if err != nil {
		return fmt.Errorf("pipeline: resample: %w", err)
	}
	rs.tex = tex
	return nil
}

// Release frees the stage's texture. The stage is reusable after
// Release; the next Process rebuilds the texture.
func (rs *Resample) Release() {
	if rs.tex != nil {
		rs.tex.Release()
		rs.tex = nil
	}
}
