package criminisi

import (
	"context"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"object-remover/internal/algorithms"
	"object-remover/internal/imaging"
)

// window is the part of a patch that lies inside the image, as extents from
// the anchor. Full patches have every extent equal to r.
type window struct {
	left, top, right, bottom int
}

// windowAt clips the radius-r patch around p to the image per side.
func windowAt(p image.Point, r, width, height int) window {
	return window{
		left:   min(r, p.X),
		top:    min(r, p.Y),
		right:  min(r, width-1-p.X),
		bottom: min(r, height-1-p.Y),
	}
}

func (w window) full(r int) bool {
	return w.left == r && w.top == r && w.right == r && w.bottom == r
}

type sample struct {
	dx, dy int
	c      imaging.BGR
}

// targetPatch is the working-image content around the anchor: the valid pixels
// used for matching and the number of hole pixels still to fill.
type targetPatch struct {
	anchor image.Point
	win    window
	known  []sample
	holes  int
}

func extractTarget(img *imaging.Image, mask *imaging.Mask, p image.Point, win window) targetPatch {
	t := targetPatch{anchor: p, win: win}
	for dy := -win.top; dy <= win.bottom; dy++ {
		for dx := -win.left; dx <= win.right; dx++ {
			x, y := p.X+dx, p.Y+dy
			if mask.IsHole(x, y) {
				t.holes++
				continue
			}
			t.known = append(t.known, sample{dx: dx, dy: dy, c: img.At(x, y)})
		}
	}
	return t
}

// holeTable is a summed-area table of hole pixels for O(1) footprint checks.
type holeTable struct {
	stride int
	sums   []int32
}

func newHoleTable(mask *imaging.Mask) *holeTable {
	w, h := mask.Width(), mask.Height()
	t := &holeTable{stride: w + 1, sums: make([]int32, (w+1)*(h+1))}
	for y := 0; y < h; y++ {
		var rowSum int32
		for x := 0; x < w; x++ {
			if mask.IsHole(x, y) {
				rowSum++
			}
			t.sums[(y+1)*t.stride+x+1] = t.sums[y*t.stride+x+1] + rowSum
		}
	}
	return t
}

// count returns the holes inside [x0, x1) x [y0, y1).
func (t *holeTable) count(x0, y0, x1, y1 int) int32 {
	s := t.stride
	return t.sums[y1*s+x1] - t.sums[y0*s+x1] - t.sums[y1*s+x0] + t.sums[y0*s+x0]
}

type chunkBest struct {
	ssd   int64
	point image.Point
	found bool
}

// exemplarSearch scans candidate centres on a stride grid for the fully valid
// patch closest to the target's known pixels.
type exemplarSearch struct {
	radius  int
	stride  int
	workers int
}

// find returns the best source centre and its SSD. Candidates are visited in
// row-major order and the first minimum wins, independent of worker count.
func (s exemplarSearch) find(ctx context.Context, img *imaging.Image, holes *holeTable, target targetPatch) (image.Point, int64, error) {
	r := s.radius
	w, h := img.Width(), img.Height()

	var rows []int
	for y := r; y < h-r; y += s.stride {
		rows = append(rows, y)
	}
	if len(rows) == 0 || r >= w-r {
		return image.Point{}, 0, fmt.Errorf("%w: %dx%d image cannot hold a %dx%d patch",
			algorithms.ErrNoExemplarFound, w, h, 2*r+1, 2*r+1)
	}

	size := chunkSize(len(rows), s.workers, 1)
	chunks := (len(rows) + size - 1) / size
	best := make([]chunkBest, chunks)

	err := forEachChunk(ctx, len(rows), size, s.workers, func(chunk, start, end int) error {
		local := chunkBest{ssd: math.MaxInt64}
		for _, cy := range rows[start:end] {
			for cx := r; cx < w-r; cx += s.stride {
				if holes.count(cx-r, cy-r, cx+r+1, cy+r+1) > 0 {
					continue
				}
				ssd, ok := patchSSD(img, target.known, cx, cy, local.ssd)
				if ok && ssd < local.ssd {
					local = chunkBest{ssd: ssd, point: image.Pt(cx, cy), found: true}
				}
			}
		}
		best[chunk] = local
		return nil
	})
	if err != nil {
		return image.Point{}, 0, err
	}

	scores := make([]float64, chunks)
	for i, b := range best {
		scores[i] = math.Inf(1)
		if b.found {
			scores[i] = float64(b.ssd)
		}
	}
	winner := best[floats.MinIdx(scores)]
	if !winner.found {
		return image.Point{}, 0, fmt.Errorf("%w: no fully valid %dx%d patch for anchor (%d,%d)",
			algorithms.ErrNoExemplarFound, 2*r+1, 2*r+1, target.anchor.X, target.anchor.Y)
	}
	return winner.point, winner.ssd, nil
}

// patchSSD sums squared channel differences between the known target pixels
// and the candidate centred at (cx, cy). It gives up once the sum reaches
// limit, since such a candidate can no longer win.
func patchSSD(img *imaging.Image, known []sample, cx, cy int, limit int64) (int64, bool) {
	pix := img.Pix()
	w := img.Width()
	var ssd int64
	for _, k := range known {
		i := ((cy+k.dy)*w + cx + k.dx) * imaging.Channels
		d0 := int64(k.c[0]) - int64(pix[i])
		d1 := int64(k.c[1]) - int64(pix[i+1])
		d2 := int64(k.c[2]) - int64(pix[i+2])
		ssd += d0*d0 + d1*d1 + d2*d2
		if ssd >= limit {
			return ssd, false
		}
	}
	return ssd, true
}
