package criminisi

import (
	"context"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"object-remover/internal/imaging"
)

// Below this many front points per chunk the goroutine handoff costs more than the work.
const minPriorityChunk = 32

type frontScore struct {
	point      image.Point
	confidence float64
	data       float64
	priority   float64
}

// confidenceTerm averages the confidence over the patch around p. Cells outside
// the image count as zero but still belong to the (2r+1)^2 denominator.
func confidenceTerm(bank *MapBank, p image.Point, r int) float64 {
	side := 2*r + 1
	x0, x1 := max(p.X-r, 0), min(p.X+r, bank.width-1)
	y0, y1 := max(p.Y-r, 0), min(p.Y+r, bank.height-1)

	sum := 0.0
	for y := y0; y <= y1; y++ {
		row := bank.Confidence[y*bank.width : (y+1)*bank.width]
		for x := x0; x <= x1; x++ {
			sum += row[x]
		}
	}
	return sum / float64(side*side)
}

// dataTerm is the isophote magnitude at p plus Epsilon. The isophote is the
// luminance gradient turned by 90 degrees, so only its length matters.
// Border pixels have no centred difference and score zero.
func dataTerm(img *imaging.Image, p image.Point) float64 {
	if p.X <= 0 || p.Y <= 0 || p.X >= img.Width()-1 || p.Y >= img.Height()-1 {
		return 0
	}
	dx := img.Luminance(p.X+1, p.Y) - img.Luminance(p.X-1, p.Y)
	dy := img.Luminance(p.X, p.Y+1) - img.Luminance(p.X, p.Y-1)
	return math.Hypot(-dy, dx) + Epsilon
}

// scoreFront evaluates C, D and P for every front point. It only reads shared state.
func scoreFront(ctx context.Context, img *imaging.Image, bank *MapBank, points []image.Point, r, workers int) ([]frontScore, error) {
	scores := make([]frontScore, len(points))
	size := chunkSize(len(points), workers, minPriorityChunk)

	err := forEachChunk(ctx, len(points), size, workers, func(_, start, end int) error {
		for i := start; i < end; i++ {
			p := points[i]
			c := confidenceTerm(bank, p, r)
			d := dataTerm(img, p)
			scores[i] = frontScore{point: p, confidence: c, data: d, priority: c * d}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// selectAnchor returns the index of the highest priority; the first one in
// front order wins ties.
func selectAnchor(scores []frontScore) int {
	priorities := make([]float64, len(scores))
	for i, s := range scores {
		priorities[i] = s.priority
	}
	return floats.MaxIdx(priorities)
}
