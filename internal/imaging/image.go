// Package imaging holds the pixel and mask buffers the fill engine works on.
// Pixels are 8-bit BGR triplets stored row-major in one contiguous slice.
package imaging

import (
	"fmt"
	"image"
)

// Channels is the fixed channel count of an Image (blue, green, red).
const Channels = 3

// BGR is one pixel in blue-green-red order.
type BGR [Channels]uint8

type Image struct {
	width  int
	height int
	pix    []uint8
}

// NewImage allocates a black image.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}
	return &Image{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*Channels),
	}, nil
}

// NewImageFromBGR copies a packed BGR buffer. The caller keeps ownership of pix.
func NewImageFromBGR(pix []uint8, width, height int) (*Image, error) {
	img, err := NewImage(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) != len(img.pix) {
		return nil, fmt.Errorf("buffer holds %d bytes, expected %d for %dx%d BGR", len(pix), len(img.pix), width, height)
	}
	copy(img.pix, pix)
	return img, nil
}

// NewUniform returns an image filled with one colour.
func NewUniform(width, height int, c BGR) (*Image, error) {
	img, err := NewImage(width, height)
	if err != nil {
		return nil, err
	}
	img.Fill(img.Bounds(), c)
	return img, nil
}

func (m *Image) Width() int  { return m.width }
func (m *Image) Height() int { return m.height }

func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

func (m *Image) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

// At returns the pixel at (x, y). Out-of-bounds access panics.
func (m *Image) At(x, y int) BGR {
	i := m.offset(x, y)
	return BGR{m.pix[i], m.pix[i+1], m.pix[i+2]}
}

// Set writes the pixel at (x, y). Out-of-bounds access panics.
func (m *Image) Set(x, y int, c BGR) {
	i := m.offset(x, y)
	m.pix[i], m.pix[i+1], m.pix[i+2] = c[0], c[1], c[2]
}

// Luminance returns 0.299R + 0.587G + 0.114B at (x, y).
func (m *Image) Luminance(x, y int) float64 {
	i := m.offset(x, y)
	return 0.114*float64(m.pix[i]) + 0.587*float64(m.pix[i+1]) + 0.299*float64(m.pix[i+2])
}

// Fill paints r (clipped to the image) with c.
func (m *Image) Fill(r image.Rectangle, c BGR) {
	r = r.Intersect(m.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, c)
		}
	}
}

// Pix exposes the backing buffer. Writes through it mutate the image.
func (m *Image) Pix() []uint8 {
	return m.pix
}

// Bytes returns a copy of the backing buffer.
func (m *Image) Bytes() []uint8 {
	out := make([]uint8, len(m.pix))
	copy(out, m.pix)
	return out
}

func (m *Image) Clone() *Image {
	return &Image{
		width:  m.width,
		height: m.height,
		pix:    m.Bytes(),
	}
}

// Equal reports whether both images have the same size and pixels.
func (m *Image) Equal(other *Image) bool {
	if other == nil || m.width != other.width || m.height != other.height {
		return false
	}
	for i := range m.pix {
		if m.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

func (m *Image) offset(x, y int) int {
	if !m.Contains(x, y) {
		panic(fmt.Sprintf("imaging: pixel (%d,%d) outside %dx%d image", x, y, m.width, m.height))
	}
	return (y*m.width + x) * Channels
}
