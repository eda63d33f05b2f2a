package source

import (
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/image/draw"

	"github.com/flowgpu/flowgpu/internal/gpuimage"
)

// WrapGray wraps a grayscale image as a host descriptor without
// copying. The descriptor shares the image's pixel memory.
func WrapGray(img *image.Gray) gpuimage.HostImage {
	b := img.Bounds()
	return gpuimage.HostImage{
		Height:   b.Dy(),
		Width:    b.Dx(),
		Depth:    1,
		ItemSize: 1,
		Pitch:    img.Stride,
		Data:     img.Pix,
	}
}

// WrapRGBA wraps an RGBA image as a host descriptor without copying.
func WrapRGBA(img *image.RGBA) gpuimage.HostImage {
	b := img.Bounds()
	return gpuimage.HostImage{
		Height:   b.Dy(),
		Width:    b.Dx(),
		Depth:    4,
		ItemSize: 1,
		Pitch:    img.Stride,
		Data:     img.Pix,
	}
}

// WrapFloat32 wraps a tightly-packed single-channel float32 plane as a
// host descriptor. The descriptor aliases the slice memory; the caller
// keeps vals alive for the descriptor's lifetime.
func WrapFloat32(vals []float32, height, width int) (gpuimage.HostImage, error) {
	if len(vals) < height*width {
		return gpuimage.HostImage{}, fmt.Errorf("source: float plane has %d values, need %d",
			len(vals), height*width)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(vals)*4)
	return gpuimage.HostImage{
		Height:   height,
		Width:    width,
		Depth:    1,
		ItemSize: 4,
		Pitch:    width * 4,
		Data:     data,
	}, nil
}

// ToGray converts any image to grayscale, reusing dst when it has the
// right size. Returns the converted image.
func ToGray(img image.Image, dst *image.Gray) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	if dst == nil || dst.Bounds().Dx() != b.Dx() || dst.Bounds().Dy() != b.Dy() {
		dst = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ToRGBA converts any image to RGBA, reusing dst when it has the right
// size.
func ToRGBA(img image.Image, dst *image.RGBA) *image.RGBA {
	if r, ok := img.(*image.RGBA); ok {
		return r
	}
	b := img.Bounds()
	if dst == nil || dst.Bounds().Dx() != b.Dx() || dst.Bounds().Dy() != b.Dy() {
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Scale resamples src into a new image of the given size using
// bilinear interpolation, converting to grayscale when gray is true.
func Scale(src image.Image, width, height int, gray bool) image.Image {
	r := image.Rect(0, 0, width, height)
	if gray {
		dst := image.NewGray(r)
		draw.BiLinear.Scale(dst, r, src, src.Bounds(), draw.Src, nil)
		return dst
	}
	dst := image.NewRGBA(r)
	draw.BiLinear.Scale(dst, r, src, src.Bounds(), draw.Src, nil)
	return dst
}

// FromImage converts an image into a host descriptor with the given
// layout. For Gray8 and RGBA8 on matching input types this is a
// zero-copy wrap; otherwise pixels are converted. For GrayFloat32 the
// luminance is expanded to float32 in [0, 1].
func FromImage(img image.Image, layout Layout) (gpuimage.HostImage, error) {
	switch layout {
	case Gray8:
		return WrapGray(ToGray(img, nil)), nil
	case RGBA8:
		return WrapRGBA(ToRGBA(img, nil)), nil
	case GrayFloat32:
		g := ToGray(img, nil)
		b := g.Bounds()
		vals := make([]float32, b.Dx()*b.Dy())
		for y := 0; y < b.Dy(); y++ {
			row := g.Pix[y*g.Stride:]
			for x := 0; x < b.Dx(); x++ {
				vals[y*b.Dx()+x] = float32(row[x]) / 255.0
			}
		}
		return WrapFloat32(vals, b.Dy(), b.Dx())
	default:
		return gpuimage.HostImage{}, fmt.Errorf("source: unknown layout %d", layout)
	}
}
