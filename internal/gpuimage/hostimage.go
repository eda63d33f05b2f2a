package gpuimage

import "fmt"

// HostImage is a plain view over externally-owned host memory, and the
// sole interchange format at the host/device boundary. Any frame source
// (capture device, file decoder) or sink (display, encoder) produces or
// accepts exactly this shape. It does not own Data; the caller is
// responsible for keeping the backing memory alive.
type HostImage struct {
	Height   int    // rows
	Width    int    // columns
	Depth    int    // channels per pixel
	ItemSize int    // bytes per channel element
	Pitch    int    // bytes per row, >= Width*Depth*ItemSize
	Data     []byte // backing memory, externally owned
}

// RowSize returns the tight row size in bytes, Width*Depth*ItemSize.
func (h HostImage) RowSize() int {
	return h.Width * h.Depth * h.ItemSize
}

// Validate checks that the descriptor is internally consistent:
// all shape fields positive, pitch at least the tight row size, and
// Data large enough to hold Height rows at the stated pitch.
func (h HostImage) Validate() error {
	if h.Height <= 0 || h.Width <= 0 || h.Depth <= 0 || h.ItemSize <= 0 {
		return fmt.Errorf("%w: non-positive shape [%d, %d, %d] itemSize=%d",
			ErrInvalidImage, h.Height, h.Width, h.Depth, h.ItemSize)
	}
	if h.Pitch < h.RowSize() {
		return fmt.Errorf("%w: pitch %d < row size %d", ErrInvalidImage, h.Pitch, h.RowSize())
	}
	need := (h.Height-1)*h.Pitch + h.RowSize()
	if len(h.Data) < need {
		return fmt.Errorf("%w: data length %d < required %d", ErrInvalidImage, len(h.Data), need)
	}
	return nil
}

// Row returns the byte slice for row y, trimmed to the tight row size.
func (h HostImage) Row(y int) []byte {
	off := y * h.Pitch
	return h.Data[off : off+h.RowSize()]
}
