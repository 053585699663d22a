package criminisi

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"object-remover/internal/imaging"
)

var neighbours8 = [8]image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// FrontComponent is the boundary of one 8-connected hole region, in row-major order.
type FrontComponent struct {
	Points []image.Point
}

// FillFront lists the boundary of every hole region, ordered by the first
// pixel of each region in row-major order.
type FillFront struct {
	Components []FrontComponent
}

func (f FillFront) Len() int {
	n := 0
	for _, c := range f.Components {
		n += len(c.Points)
	}
	return n
}

func (f FillFront) Empty() bool {
	return f.Len() == 0
}

// Points flattens the front in enumeration order.
func (f FillFront) Points() []image.Point {
	out := make([]image.Point, 0, f.Len())
	for _, c := range f.Components {
		out = append(out, c.Points...)
	}
	return out
}

// DetectFront finds every hole pixel with an in-bounds valid 8-neighbour,
// grouped per hole region. Regions are labelled by OpenCV.
func DetectFront(mask *imaging.Mask) (FillFront, error) {
	var front FillFront
	if mask.Empty() {
		return front, nil
	}

	w, h := mask.Width(), mask.Height()
	holes, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, mask.Bytes())
	if err != nil {
		return front, fmt.Errorf("hole Mat creation failed: %w", err)
	}
	defer holes.Close()

	labels := gocv.NewMat()
	defer labels.Close()

	count := gocv.ConnectedComponentsWithParams(holes, &labels, 8, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)
	ids, err := labels.DataPtrInt32()
	if err != nil {
		return front, fmt.Errorf("hole labels unreadable: %w", err)
	}
	if len(ids) != w*h {
		return front, fmt.Errorf("hole labels hold %d entries, expected %d", len(ids), w*h)
	}

	// slot maps a label to its component index plus one. Label 0 is background.
	slot := make([]int, max(count, 1))
	bounds := mask.HoleBounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !mask.IsHole(x, y) {
				continue
			}
			label := int(ids[y*w+x])
			if label <= 0 || label >= len(slot) {
				return FillFront{}, fmt.Errorf("hole pixel (%d,%d) has label %d of %d", x, y, label, count)
			}
			if slot[label] == 0 {
				front.Components = append(front.Components, FrontComponent{})
				slot[label] = len(front.Components)
			}
			if onFront(mask, image.Pt(x, y)) {
				c := &front.Components[slot[label]-1]
				c.Points = append(c.Points, image.Pt(x, y))
			}
		}
	}

	// Regions with no valid neighbour at all contribute nothing.
	kept := front.Components[:0]
	for _, c := range front.Components {
		if len(c.Points) > 0 {
			kept = append(kept, c)
		}
	}
	front.Components = kept
	return front, nil
}

func onFront(mask *imaging.Mask, p image.Point) bool {
	for _, d := range neighbours8 {
		if mask.IsValid(p.X+d.X, p.Y+d.Y) {
			return true
		}
	}
	return false
}
