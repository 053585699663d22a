package criminisi

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"object-remover/internal/imaging"
)

var (
	green = imaging.BGR{0, 255, 0}
	blue  = imaging.BGR{255, 0, 0}
	black = imaging.BGR{0, 0, 0}
	white = imaging.BGR{255, 255, 255}
)

func uniformImage(t *testing.T, w, h int, c imaging.BGR) *imaging.Image {
	t.Helper()
	img, err := imaging.NewUniform(w, h, c)
	require.NoError(t, err)
	return img
}

// texturedImage has no two identical 3x3 neighbourhoods in practice.
func texturedImage(t *testing.T, w, h int) *imaging.Image {
	t.Helper()
	img, err := imaging.NewImage(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint32(x*73856093) ^ uint32(y*19349663)
			v ^= v >> 13
			v *= 0x5bd1e995
			v ^= v >> 15
			img.Set(x, y, imaging.BGR{uint8(v), uint8(v >> 8), uint8(v >> 16)})
		}
	}
	return img
}

func maskWithHoles(t *testing.T, w, h int, holes ...image.Rectangle) *imaging.Mask {
	t.Helper()
	mask, err := imaging.NewMask(w, h)
	require.NoError(t, err)
	for _, r := range holes {
		mask.SetRect(r, imaging.Hole)
	}
	return mask
}

func newTestProcessor(t *testing.T, cfg Config) *Processor {
	t.Helper()
	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	return p
}

func meanColor(img *imaging.Image, r image.Rectangle) [3]float64 {
	var sum [3]float64
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.At(x, y)
			for ch := range sum {
				sum[ch] += float64(c[ch])
			}
			n++
		}
	}
	for ch := range sum {
		sum[ch] /= float64(n)
	}
	return sum
}
