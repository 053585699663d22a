package criminisi

import (
	"image"

	"object-remover/internal/imaging"
)

// applyPatch copies the source patch into every hole pixel of the target
// window, marks those pixels valid and gives them the anchor's confidence.
// It returns the number of pixels filled.
func applyPatch(img *imaging.Image, mask *imaging.Mask, bank *MapBank, target, source image.Point, win window, confidence float64) int {
	filled := 0
	for dy := -win.top; dy <= win.bottom; dy++ {
		for dx := -win.left; dx <= win.right; dx++ {
			t := image.Pt(target.X+dx, target.Y+dy)
			if !mask.IsHole(t.X, t.Y) {
				continue
			}
			img.Set(t.X, t.Y, img.At(source.X+dx, source.Y+dy))
			mask.Set(t.X, t.Y, imaging.Valid)
			bank.SetConfidence(t, confidence)
			filled++
		}
	}
	return filled
}
