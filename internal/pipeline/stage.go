// Package pipeline provides the compute-stage shell around GPU image
// buffers: an opaque stage interface, a frame-loop runner, and a
// texture-sampled resampling stage used for preprocessing.
package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/flowgpu/flowgpu/internal/gpuimage"
	"github.com/flowgpu/flowgpu/internal/source"
)

// Stage is a compute stage operating on device buffers. The stage
// reads src and writes dst; both stay resident on the device.
type Stage interface {
	Process(dst, src *gpuimage.Buffer) error
}

// Sink receives each downloaded result frame. The image is reused
// between frames; copy it to retain.
type Sink func(frame int, img gpuimage.HostImage) error

// Run drives frames from src through stage until the source is
// exhausted: upload into in, process into out, download, hand to sink.
// in may start unallocated (it adopts the first frame's shape); out
// must be allocated to the stage's output shape. Returns the number of
// frames processed.
func Run(src source.FrameSource, stage Stage, in, out *gpuimage.Buffer, sink Sink) (int, error) {
	if out == nil || out.Empty() {
		return 0, fmt.Errorf("pipeline: %w: output buffer must be allocated", gpuimage.ErrUnallocated)
	}

	var host gpuimage.HostImage
	frames := 0
	for {
		img, err := src.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("pipeline: frame %d: %w", frames, err)
		}

		if err := in.Upload(img); err != nil {
			return frames, fmt.Errorf("pipeline: frame %d upload: %w", frames, err)
		}
		if err := stage.Process(out, in); err != nil {
			return frames, fmt.Errorf("pipeline: frame %d: %w", frames, err)
		}

		if host.Data == nil {
			host = gpuimage.HostImage{
				Height:   out.Height(),
				Width:    out.Width(),
				Depth:    out.Depth(),
				ItemSize: out.ItemSize(),
				Pitch:    out.RowSize(),
				Data:     make([]byte, out.Height()*out.RowSize()),
			}
		}
		if err := out.Download(host); err != nil {
			return frames, fmt.Errorf("pipeline: frame %d download: %w", frames, err)
		}

		if sink != nil {
			if err := sink(frames, host); err != nil {
				return frames, err
			}
		}
		frames++
	}
}
