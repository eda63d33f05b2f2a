package pipeline

// WGSL compute shaders for pipeline stages.

// Workgroup dimensions for image-shaped dispatches.
const (
	workgroupX = 16
	workgroupY = 16
)

// resampleShader samples an 8-bit luminance texture at an arbitrary
// output resolution and writes normalized float32 values into a
// pitched storage buffer. Sampling coordinates are normalized from the
// output pixel center, so the sampler's filter mode decides between
// nearest and bilinear resampling.
const resampleShader = `
@group(0) @binding(0) var src: texture_2d<f32>;
@group(0) @binding(1) var samp: sampler;
@group(0) @binding(2) var<storage, read_write> dst: array<f32>;

struct Params {
    width: u32,
    height: u32,
    pitch_words: u32,
    _pad: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let x = global_id.x;
    let y = global_id.y;
    if (x >= params.width || y >= params.height) {
        return;
    }
    let size = vec2<f32>(f32(params.width), f32(params.height));
    let uv = (vec2<f32>(f32(x), f32(y)) + vec2<f32>(0.5, 0.5)) / size;
    let v = textureSampleLevel(src, samp, uv, 0.0);
    dst[y * params.pitch_words + x] = v.r;
}
`
