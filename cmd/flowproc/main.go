// Package main provides the flowproc CLI: an offline frame-processing
// demo that runs a directory of frames through the GPU resampling
// stage and writes the results back out as PNG files.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/flowgpu/flowgpu/gpuimage"
	"github.com/flowgpu/flowgpu/pipeline"
	"github.com/flowgpu/flowgpu/source"
)

func main() {
	inDir := flag.String("in", "", "directory of input frames (png/jpeg)")
	outDir := flag.String("out", "out", "directory for processed frames")
	width := flag.Int("width", 640, "output frame width")
	height := flag.Int("height", 480, "output frame height")
	linear := flag.Bool("linear", true, "bilinear filtering (nearest-neighbor when false)")
	flag.Parse()

	if *inDir == "" {
		fmt.Fprintln(os.Stderr, "flowproc: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*inDir, *outDir, *width, *height, *linear); err != nil {
		fmt.Fprintf(os.Stderr, "flowproc: %v\n", err)
		os.Exit(1)
	}
}

func run(inDir, outDir string, width, height int, linear bool) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("output size must be positive, got %dx%d", width, height)
	}
	if !gpuimage.IsAvailable() {
		return fmt.Errorf("WebGPU is not available on this system")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	dev, err := gpuimage.New()
	if err != nil {
		return err
	}
	defer dev.Release()
	fmt.Printf("using %s\n", dev.Name())

	src, err := source.NewDirSource(inDir, source.Gray8, 0, 0)
	if err != nil {
		return err
	}
	defer src.Close()

	in := gpuimage.NewEmptyBuffer(dev)
	defer in.Release()
	out, err := gpuimage.NewBuffer(dev, height, width, 1, 4)
	if err != nil {
		return err
	}
	defer out.Release()

	filter := gpuimage.FilterNearest
	if linear {
		filter = gpuimage.FilterLinear
	}
	stage := pipeline.NewResample(dev, filter)
	defer stage.Release()

	bar := progressbar.Default(int64(src.Len()), "processing")
	frame := image.NewGray(image.Rect(0, 0, width, height))

	n, err := pipeline.Run(src, stage, in, out, func(i int, img gpuimage.HostImage) error {
		floatToGray(img, frame)
		if err := writePNG(filepath.Join(outDir, fmt.Sprintf("frame_%05d.png", i)), frame); err != nil {
			return err
		}
		return bar.Add(1)
	})
	if err != nil {
		return err
	}

	fmt.Printf("processed %d frames into %s\n", n, outDir)
	return nil
}

// floatToGray quantizes a normalized float32 image into an 8-bit
// grayscale frame.
func floatToGray(img gpuimage.HostImage, dst *image.Gray) {
	for y := 0; y < img.Height; y++ {
		row := img.Data[y*img.Pitch:]
		for x := 0; x < img.Width; x++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(row[x*4 : x*4+4]))
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			dst.Pix[y*dst.Stride+x] = byte(v*255 + 0.5)
		}
	}
}

// writePNG writes a frame to disk.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
