package imaging

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageRejectsBadDimensions(t *testing.T) {
	_, err := NewImage(0, 10)
	assert.Error(t, err)
	_, err = NewImage(10, -1)
	assert.Error(t, err)
}

func TestNewImageFromBGRCopiesBuffer(t *testing.T) {
	pix := []uint8{1, 2, 3, 4, 5, 6}
	img, err := NewImageFromBGR(pix, 2, 1)
	require.NoError(t, err)

	pix[0] = 99
	assert.Equal(t, BGR{1, 2, 3}, img.At(0, 0))
	assert.Equal(t, BGR{4, 5, 6}, img.At(1, 0))

	_, err = NewImageFromBGR(pix[:5], 2, 1)
	assert.Error(t, err)
}

func TestImageLuminanceWeights(t *testing.T) {
	img, err := NewUniform(1, 1, BGR{0, 0, 255})
	require.NoError(t, err)
	assert.InDelta(t, 0.299*255, img.Luminance(0, 0), 1e-9)

	img.Set(0, 0, BGR{255, 255, 255})
	assert.InDelta(t, 255.0, img.Luminance(0, 0), 1e-9)
}

func TestImageCloneIsIndependent(t *testing.T) {
	img, err := NewUniform(3, 3, BGR{10, 20, 30})
	require.NoError(t, err)

	clone := img.Clone()
	require.True(t, img.Equal(clone))

	clone.Set(1, 1, BGR{0, 0, 0})
	assert.False(t, img.Equal(clone))
	assert.Equal(t, BGR{10, 20, 30}, img.At(1, 1))
}

func TestImageAccessOutOfBoundsPanics(t *testing.T) {
	img, err := NewImage(2, 2)
	require.NoError(t, err)
	assert.Panics(t, func() { img.At(2, 0) })
	assert.Panics(t, func() { img.Set(0, -1, BGR{}) })
}

func TestImageFillClips(t *testing.T) {
	img, err := NewImage(4, 4)
	require.NoError(t, err)
	img.Fill(image.Rect(2, 2, 10, 10), BGR{255, 0, 0})

	assert.Equal(t, BGR{255, 0, 0}, img.At(3, 3))
	assert.Equal(t, BGR{}, img.At(1, 1))
}

func TestMaskHoleCountTracksUpdates(t *testing.T) {
	mask, err := NewMask(5, 5)
	require.NoError(t, err)
	assert.True(t, mask.Empty())

	applied := mask.SetRect(image.Rect(1, 1, 3, 4), Hole)
	assert.Equal(t, image.Rect(1, 1, 3, 4), applied)
	assert.Equal(t, 6, mask.HoleCount())

	mask.Set(1, 1, Hole)
	assert.Equal(t, 6, mask.HoleCount())
	mask.Set(1, 1, Valid)
	assert.Equal(t, 5, mask.HoleCount())

	assert.Equal(t, image.Rect(1, 1, 3, 4), mask.HoleBounds())

	mask.Clear()
	assert.Zero(t, mask.HoleCount())
	assert.Equal(t, image.Rectangle{}, mask.HoleBounds())
}

func TestMaskOutOfBoundsIsNeitherHoleNorValid(t *testing.T) {
	mask, err := NewMask(3, 3)
	require.NoError(t, err)
	mask.Set(0, 0, Hole)

	assert.True(t, mask.IsHole(0, 0))
	assert.False(t, mask.IsHole(-1, 0))
	assert.False(t, mask.IsValid(-1, 0))
	assert.False(t, mask.IsValid(3, 3))
	assert.Panics(t, func() { mask.Set(3, 0, Hole) })
}

func TestNewMaskFromBytes(t *testing.T) {
	mask, err := NewMaskFromBytes([]uint8{0, 255, 1, 0}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, mask.HoleCount())
	assert.True(t, mask.IsHole(1, 0))
	assert.True(t, mask.IsHole(0, 1))
	assert.Equal(t, "hole", mask.At(1, 0).String())

	_, err = NewMaskFromBytes([]uint8{0}, 2, 2)
	assert.Error(t, err)
}

func TestClampRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	r, clipped := ClampRect(image.Rect(10, 10, 30, 30), bounds)
	assert.Equal(t, image.Rect(10, 10, 30, 30), r)
	assert.False(t, clipped)

	r, clipped = ClampRect(image.Rect(-10, 90, 20, 120), bounds)
	assert.Equal(t, image.Rect(0, 90, 20, 100), r)
	assert.True(t, clipped)

	r, clipped = ClampRect(image.Rect(200, 200, 210, 210), bounds)
	assert.True(t, r.Empty())
	assert.True(t, clipped)

	r, clipped = ClampRect(image.Rectangle{Min: image.Pt(50, 50), Max: image.Pt(40, 60)}, bounds)
	assert.True(t, r.Empty())
	assert.False(t, clipped)
}

func TestMaskBytesRoundTrip(t *testing.T) {
	mask, err := NewMask(3, 2)
	require.NoError(t, err)
	mask.Set(1, 0, Hole)
	mask.Set(2, 1, Hole)

	data := mask.Bytes()
	assert.Equal(t, []uint8{0, 255, 0, 0, 0, 255}, data)

	back, err := NewMaskFromBytes(data, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, back.HoleCount())
	assert.True(t, back.IsHole(2, 1))
}
