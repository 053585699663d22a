package criminisi

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-remover/internal/imaging"
)

func detectFront(t *testing.T, mask *imaging.Mask) FillFront {
	t.Helper()
	front, err := DetectFront(mask)
	require.NoError(t, err)
	return front
}

func TestDetectFrontSquareHole(t *testing.T) {
	mask := maskWithHoles(t, 7, 7, image.Rect(2, 2, 5, 5))

	front := detectFront(t, mask)

	require.Len(t, front.Components, 1)
	assert.Equal(t, []image.Point{
		{2, 2}, {3, 2}, {4, 2},
		{2, 3}, {4, 3},
		{2, 4}, {3, 4}, {4, 4},
	}, front.Components[0].Points, "centre pixel has no valid neighbour")
	assert.Equal(t, 8, front.Len())
}

func TestDetectFrontOrdersComponentsRowMajor(t *testing.T) {
	mask := maskWithHoles(t, 20, 20,
		image.Rect(12, 2, 14, 4),
		image.Rect(1, 10, 3, 12),
		image.Rect(15, 15, 16, 16),
	)

	front := detectFront(t, mask)

	require.Len(t, front.Components, 3)
	assert.Equal(t, image.Pt(12, 2), front.Components[0].Points[0])
	assert.Equal(t, image.Pt(1, 10), front.Components[1].Points[0])
	assert.Equal(t, []image.Point{{15, 15}}, front.Components[2].Points)
	assert.Len(t, front.Points(), 4+4+1)
}

func TestDetectFrontDiagonalPixelsShareComponent(t *testing.T) {
	mask := maskWithHoles(t, 6, 6, image.Rect(1, 1, 2, 2), image.Rect(2, 2, 3, 3))

	front := detectFront(t, mask)

	require.Len(t, front.Components, 1)
	assert.Equal(t, []image.Point{{1, 1}, {2, 2}}, front.Components[0].Points)
}

func TestDetectFrontRingIncludesInnerBoundary(t *testing.T) {
	mask := maskWithHoles(t, 11, 11, image.Rect(2, 2, 9, 9))
	mask.SetRect(image.Rect(5, 5, 6, 6), imaging.Valid)

	front := detectFront(t, mask)

	require.Len(t, front.Components, 1)
	points := front.Components[0].Points
	assert.Contains(t, points, image.Pt(4, 4))
	assert.Contains(t, points, image.Pt(6, 6))
	assert.Contains(t, points, image.Pt(2, 2))
	assert.NotContains(t, points, image.Pt(3, 3))
	assert.Len(t, points, 24+8)
}

func TestDetectFrontAlongImageBorder(t *testing.T) {
	mask := maskWithHoles(t, 5, 5, image.Rect(0, 0, 1, 5))

	front := detectFront(t, mask)

	require.Len(t, front.Components, 1)
	assert.Len(t, front.Components[0].Points, 5)
}

func TestDetectFrontEmpty(t *testing.T) {
	assert.True(t, detectFront(t, maskWithHoles(t, 8, 8)).Empty())
	assert.True(t, detectFront(t, maskWithHoles(t, 8, 8, image.Rect(0, 0, 8, 8))).Empty(),
		"an all-hole mask has no valid pixel to grow from")
}

func TestDetectFrontSeparatesTouchingOnlyAcrossValidPixels(t *testing.T) {
	mask := maskWithHoles(t, 12, 6,
		image.Rect(1, 1, 4, 5),
		image.Rect(5, 1, 8, 5),
		image.Rect(9, 4, 11, 5),
	)

	front := detectFront(t, mask)

	require.Len(t, front.Components, 3)
	assert.Equal(t, image.Pt(1, 1), front.Components[0].Points[0])
	assert.Equal(t, image.Pt(5, 1), front.Components[1].Points[0])
	assert.Equal(t, []image.Point{{9, 4}, {10, 4}}, front.Components[2].Points)
	for _, c := range front.Components {
		for i := 1; i < len(c.Points); i++ {
			prev, p := c.Points[i-1], c.Points[i]
			assert.True(t, prev.Y < p.Y || (prev.Y == p.Y && prev.X < p.X), "row-major order at %v", p)
		}
	}
}
