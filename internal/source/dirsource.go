package source

import (
	"fmt"
	"image"
	_ "image/jpeg" // frame decoders
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flowgpu/flowgpu/internal/gpuimage"
)

// DirSource reads a directory of image files (PNG or JPEG) in sorted
// filename order and produces frames in a fixed layout, optionally
// rescaled to a fixed size so every frame matches the device buffer
// shape.
type DirSource struct {
	files  []string
	next   int
	layout Layout

	// target size; zero means native frame size
	width, height int

	// conversion scratch reused across frames
	gray *image.Gray
	rgba *image.RGBA
	vals []float32
}

// NewDirSource creates a source over the image files in dir.
// width and height of 0 keep each frame's native size.
func NewDirSource(dir string, layout Layout, width, height int) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("source: reading frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("source: no image files in %s", dir)
	}
	sort.Strings(files)

	return &DirSource{files: files, layout: layout, width: width, height: height}, nil
}

// Len returns the number of frames in the sequence.
func (s *DirSource) Len() int { return len(s.files) }

// Next decodes and converts the next frame. Returns io.EOF after the
// last file. The returned descriptor is valid until the following Next
// call.
func (s *DirSource) Next() (gpuimage.HostImage, error) {
	if s.next >= len(s.files) {
		return gpuimage.HostImage{}, io.EOF
	}
	path := s.files[s.next]
	s.next++

	f, err := os.Open(path)
	if err != nil {
		return gpuimage.HostImage{}, fmt.Errorf("source: opening %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return gpuimage.HostImage{}, fmt.Errorf("source: decoding %s: %w", path, err)
	}

	if s.width > 0 && s.height > 0 {
		b := img.Bounds()
		if b.Dx() != s.width || b.Dy() != s.height {
			img = Scale(img, s.width, s.height, s.layout != RGBA8)
		}
	}

	switch s.layout {
	case Gray8:
		s.gray = ToGray(img, s.gray)
		return WrapGray(s.gray), nil
	case RGBA8:
		s.rgba = ToRGBA(img, s.rgba)
		return WrapRGBA(s.rgba), nil
	case GrayFloat32:
		s.gray = ToGray(img, s.gray)
		b := s.gray.Bounds()
		if len(s.vals) != b.Dx()*b.Dy() {
			s.vals = make([]float32, b.Dx()*b.Dy())
		}
		for y := 0; y < b.Dy(); y++ {
			row := s.gray.Pix[y*s.gray.Stride:]
			for x := 0; x < b.Dx(); x++ {
				s.vals[y*b.Dx()+x] = float32(row[x]) / 255.0
			}
		}
		return WrapFloat32(s.vals, b.Dy(), b.Dx())
	default:
		return gpuimage.HostImage{}, fmt.Errorf("source: unknown layout %d", s.layout)
	}
}

// Close releases the source. DirSource holds no open handles between
// frames, so this only marks the sequence exhausted.
func (s *DirSource) Close() error {
	s.next = len(s.files)
	return nil
}
