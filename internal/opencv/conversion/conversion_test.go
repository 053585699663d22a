package conversion

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"object-remover/internal/algorithms"
	"object-remover/internal/imaging"
)

func TestFromBufferBGRIsCopied(t *testing.T) {
	pix := []byte{1, 2, 3, 4, 5, 6}

	img, err := FromBuffer(pix, 2, 1, 3)
	require.NoError(t, err)
	pix[0] = 99

	assert.Equal(t, imaging.BGR{1, 2, 3}, img.At(0, 0))
	assert.Equal(t, imaging.BGR{4, 5, 6}, img.At(1, 0))
}

func TestFromBufferDropsAlpha(t *testing.T) {
	pix := []byte{10, 20, 30, 255, 40, 50, 60, 0}

	img, err := FromBuffer(pix, 2, 1, 4)
	require.NoError(t, err)

	assert.Equal(t, imaging.BGR{10, 20, 30}, img.At(0, 0))
	assert.Equal(t, imaging.BGR{40, 50, 60}, img.At(1, 0))
}

func TestFromBufferExpandsGray(t *testing.T) {
	img, err := FromBuffer([]byte{0, 128, 255, 7}, 2, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, imaging.BGR{128, 128, 128}, img.At(1, 0))
	assert.Equal(t, imaging.BGR{7, 7, 7}, img.At(1, 1))
}

func TestFromBufferRejectsBadInput(t *testing.T) {
	cases := map[string]struct {
		pix            []byte
		w, h, channels int
	}{
		"empty":         {nil, 2, 2, 3},
		"short":         {make([]byte, 5), 2, 1, 3},
		"zero width":    {make([]byte, 3), 0, 1, 3},
		"two channels":  {make([]byte, 4), 2, 1, 2},
		"negative dims": {make([]byte, 3), -1, -3, 1},
	}
	for name, tc := range cases {
		_, err := FromBuffer(tc.pix, tc.w, tc.h, tc.channels)
		assert.ErrorIs(t, err, algorithms.ErrInvalidInput, name)
	}
}

func TestMatRoundTrip(t *testing.T) {
	img, err := imaging.NewUniform(4, 3, imaging.BGR{11, 22, 33})
	require.NoError(t, err)
	img.Set(3, 2, imaging.BGR{1, 2, 3})

	mat, err := ToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, gocv.MatTypeCV8UC3, mat.Type())
	props := GetMatProperties(mat)
	assert.Equal(t, 3, props.Rows)
	assert.Equal(t, 4, props.Cols)
	assert.Equal(t, map[string]interface{}{
		"rows":      3,
		"cols":      4,
		"channels":  3,
		"data_type": "8-bit unsigned 3-channel",
	}, props.Fields())

	back, err := FromMat(mat)
	require.NoError(t, err)
	assert.True(t, img.Equal(back))
}

func TestFromMatRejectsEmpty(t *testing.T) {
	mat := gocv.NewMat()
	defer mat.Close()

	_, err := FromMat(mat)
	assert.ErrorIs(t, err, algorithms.ErrInvalidInput)
	assert.True(t, GetMatProperties(mat).Empty)
	assert.Equal(t, map[string]interface{}{"empty": true}, GetMatProperties(mat).Fields())
}

func TestImageConversions(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	img, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, imaging.BGR{50, 100, 200}, img.At(1, 1))

	rgba := ToImage(img)
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, rgba.RGBAAt(1, 1))
	assert.Equal(t, uint8(255), rgba.RGBAAt(0, 0).A)

	_, err = FromImage(nil)
	assert.Error(t, err)
}

func TestMaskFromMat(t *testing.T) {
	mat, err := gocv.NewMatFromBytes(2, 3, gocv.MatTypeCV8UC1, []byte{0, 1, 0, 255, 0, 0})
	require.NoError(t, err)
	defer mat.Close()

	mask, err := MaskFromMat(mat)
	require.NoError(t, err)

	assert.Equal(t, 2, mask.HoleCount())
	assert.True(t, mask.IsHole(1, 0))
	assert.True(t, mask.IsHole(0, 1))
	assert.False(t, mask.IsHole(2, 1))
}

func TestPolygonMask(t *testing.T) {
	mask, err := PolygonMask(20, 20, []image.Point{{5, 5}, {14, 5}, {14, 14}, {5, 14}})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(5, 5, 15, 15), mask.HoleBounds())
	assert.Equal(t, 100, mask.HoleCount())

	_, err = PolygonMask(20, 20, []image.Point{{1, 1}, {2, 2}})
	assert.Error(t, err)
}
