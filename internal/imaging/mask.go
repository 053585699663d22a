package imaging

import (
	"fmt"
	"image"
)

// Flag marks a pixel as part of the region still to be filled or as known.
type Flag uint8

const (
	Valid Flag = iota
	Hole
)

func (f Flag) String() string {
	if f == Hole {
		return "hole"
	}
	return "valid"
}

// Mask flags every pixel of an image as Hole or Valid and keeps the hole count.
type Mask struct {
	width  int
	height int
	flags  []Flag
	holes  int
}

// NewMask returns an all-valid mask.
func NewMask(width, height int) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid mask dimensions: %dx%d", width, height)
	}
	return &Mask{
		width:  width,
		height: height,
		flags:  make([]Flag, width*height),
	}, nil
}

// NewMaskFromBytes treats every non-zero byte as Hole.
func NewMaskFromBytes(data []uint8, width, height int) (*Mask, error) {
	mask, err := NewMask(width, height)
	if err != nil {
		return nil, err
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("mask buffer holds %d bytes, expected %d", len(data), width*height)
	}
	for i, v := range data {
		if v != 0 {
			mask.flags[i] = Hole
			mask.holes++
		}
	}
	return mask, nil
}

func (m *Mask) Width() int  { return m.width }
func (m *Mask) Height() int { return m.height }

func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

func (m *Mask) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

// IsHole reports whether (x, y) is a hole pixel. Out-of-bounds pixels are not holes.
func (m *Mask) IsHole(x, y int) bool {
	if !m.Contains(x, y) {
		return false
	}
	return m.flags[y*m.width+x] == Hole
}

// IsValid reports whether (x, y) is inside the image and known.
func (m *Mask) IsValid(x, y int) bool {
	if !m.Contains(x, y) {
		return false
	}
	return m.flags[y*m.width+x] == Valid
}

// At returns the flag at (x, y). Out-of-bounds access panics.
func (m *Mask) At(x, y int) Flag {
	if !m.Contains(x, y) {
		panic(fmt.Sprintf("imaging: mask pixel (%d,%d) outside %dx%d", x, y, m.width, m.height))
	}
	return m.flags[y*m.width+x]
}

// Set updates the flag at (x, y), keeping the hole count in sync.
func (m *Mask) Set(x, y int, f Flag) {
	if !m.Contains(x, y) {
		panic(fmt.Sprintf("imaging: mask pixel (%d,%d) outside %dx%d", x, y, m.width, m.height))
	}
	i := y*m.width + x
	if m.flags[i] == f {
		return
	}
	if f == Hole {
		m.holes++
	} else {
		m.holes--
	}
	m.flags[i] = f
}

// SetRect flags r, clipped to the mask, with f and returns the clipped rectangle.
func (m *Mask) SetRect(r image.Rectangle, f Flag) image.Rectangle {
	r = r.Intersect(m.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, f)
		}
	}
	return r
}

// Clear marks every pixel valid.
func (m *Mask) Clear() {
	for i := range m.flags {
		m.flags[i] = Valid
	}
	m.holes = 0
}

// HoleCount is the number of pixels still flagged Hole.
func (m *Mask) HoleCount() int {
	return m.holes
}

func (m *Mask) Empty() bool {
	return m.holes == 0
}

// HoleBounds is the smallest rectangle containing every hole pixel.
func (m *Mask) HoleBounds() image.Rectangle {
	if m.holes == 0 {
		return image.Rectangle{}
	}
	var r image.Rectangle
	r.Min, r.Max = image.Pt(m.width, m.height), image.Pt(0, 0)
	for y := 0; y < m.height; y++ {
		row := m.flags[y*m.width : (y+1)*m.width]
		for x, f := range row {
			if f != Hole {
				continue
			}
			r.Min.X = min(r.Min.X, x)
			r.Min.Y = min(r.Min.Y, y)
			r.Max.X = max(r.Max.X, x+1)
			r.Max.Y = max(r.Max.Y, y+1)
		}
	}
	return r
}

// Bytes renders the mask as one byte per pixel, 255 for holes and 0 otherwise.
func (m *Mask) Bytes() []uint8 {
	out := make([]uint8, len(m.flags))
	for i, f := range m.flags {
		if f == Hole {
			out[i] = 255
		}
	}
	return out
}

func (m *Mask) Clone() *Mask {
	flags := make([]Flag, len(m.flags))
	copy(flags, m.flags)
	return &Mask{
		width:  m.width,
		height: m.height,
		flags:  flags,
		holes:  m.holes,
	}
}

// ClampRect intersects r with the bounds and reports whether anything was cut off.
// A rectangle without positive width and height is empty and never clipped.
func ClampRect(r, bounds image.Rectangle) (image.Rectangle, bool) {
	if r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y {
		return image.Rectangle{}, false
	}
	clamped := r.Intersect(bounds)
	return clamped, clamped != r
}
